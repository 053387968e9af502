package store

import (
	"fmt"

	"github.com/pavelanni/rapm/internal/model"
)

// ExportAllSessions builds an export document of every archived session,
// oldest first, with responses included.
func (s *Store) ExportAllSessions() (model.ArchiveExport, error) {
	export := model.ArchiveExport{ExportedAt: nowUTC()}

	seq, err := s.GetMetadata(MetaSequence)
	if err != nil {
		return export, fmt.Errorf("get metadata: %w", err)
	}
	export.Sequence = seq

	sessions, err := s.ListSessions()
	if err != nil {
		return export, fmt.Errorf("list sessions: %w", err)
	}

	export.Sessions = make([]model.ArchivedSession, 0, len(sessions))
	for i := len(sessions) - 1; i >= 0; i-- {
		a, err := s.GetSession(sessions[i].ID)
		if err != nil {
			return export, fmt.Errorf("get session %s: %w", sessions[i].ID, err)
		}
		if a == nil {
			continue
		}
		export.Sessions = append(export.Sessions, *a)
	}
	return export, nil
}
