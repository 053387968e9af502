// Package results turns finalized phases into the per-item record and the
// session summary, and writes both to disk.
package results

import (
	"math"
	"time"

	"github.com/pavelanni/rapm/internal/model"
)

// BuildResult assembles the session record from finalized phase outcomes,
// in the order given. sessionStart keys the output filenames. It does no I/O.
func BuildResult(sessionID string, participant model.Participant, outcomes []model.PhaseOutcome, sessionStart, createdAt time.Time) model.SessionResult {
	res := model.SessionResult{
		SessionID: sessionID,
		StartedAt: sessionStart,
		Summary: model.Summary{
			SessionID:   sessionID,
			Participant: participant,
			TimeCreated: createdAt,
		},
	}

	for _, o := range outcomes {
		ps := model.PhaseSummary{
			Name:             string(o.Phase.Name),
			Set:              o.Phase.Set,
			DurationSeconds:  o.Phase.Duration.Seconds(),
			ItemCount:        len(o.Phase.Items),
			RemainingSeconds: round3(o.Remaining),
			FinalizedBy:      o.Reason,
		}

		for _, item := range o.Phase.Items {
			row := model.ResponseRow{
				ParticipantID: participant.ID,
				Phase:         string(o.Phase.Name),
				ItemID:        item.ID,
			}
			if ans, ok := o.Answers[item.ID]; ok {
				a := ans
				row.Answer = &a
				ps.AnsweredCount++
			}
			if item.Correct != nil {
				c := *item.Correct
				row.Correct = &c
			}
			if row.Answer != nil && row.Correct != nil {
				ok := *row.Answer == *row.Correct
				row.IsCorrect = &ok
				if ok {
					ps.CorrectCount++
				}
			}
			if rt, ok := o.ResponseTime(item.ID); ok {
				r := round3(rt)
				row.ResponseTime = &r
			}
			res.Rows = append(res.Rows, row)
		}

		res.Summary.Phases = append(res.Summary.Phases, ps)
		res.Summary.TotalCorrect += ps.CorrectCount
		res.Summary.TotalItems += ps.ItemCount
	}
	return res
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
