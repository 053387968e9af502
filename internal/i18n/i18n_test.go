package i18n

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func initLang(t *testing.T, lang string) context.Context {
	t.Helper()
	if err := Init("en"); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return WithLanguage(context.Background(), lang)
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang string
		id   string
		want string
	}{
		{"en", "CompleteTitle", "All done!"},
		{"en", "Submit", "Submit"},
		{"zh", "CompleteTitle", "作答完成！"},
		{"zh", "Submit", "提交作答"},
		// Unknown language falls back to English.
		{"fr", "Continue", "Continue"},
	}
	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.id, func(t *testing.T) {
			ctx := initLang(t, tt.lang)
			if got := T(ctx, tt.id); got != tt.want {
				t.Errorf("T(%s) = %q, want %q", tt.id, got, tt.want)
			}
		})
	}
}

func TestPluralTranslation(t *testing.T) {
	ctx := initLang(t, "en")

	if got := Tp(ctx, "SessionsArchived", 1); got != "1 session archived." {
		t.Errorf("Tp(SessionsArchived, 1) = %q", got)
	}
	if got := Tp(ctx, "SessionsArchived", 5); got != "5 sessions archived." {
		t.Errorf("Tp(SessionsArchived, 5) = %q", got)
	}
}

func TestTemplateDataTranslation(t *testing.T) {
	ctx := initLang(t, "zh")

	got := Td(ctx, "AnsweredCount", map[string]any{"Answered": 3, "Total": 36})
	if got != "已答 3 / 总数 36" {
		t.Errorf("Td(AnsweredCount) = %q", got)
	}
}

func TestMissingKey(t *testing.T) {
	ctx := initLang(t, "en")

	if got := T(ctx, "NonExistentKey"); got != "NonExistentKey" {
		t.Errorf("T(NonExistentKey) = %q, want 'NonExistentKey'", got)
	}
}

func TestLanguages(t *testing.T) {
	initLang(t, "en")
	langs := Languages()
	found := map[string]bool{}
	for _, l := range langs {
		found[l] = true
	}
	if !found["en"] || !found["zh"] {
		t.Fatalf("Languages() = %v, want en and zh", langs)
	}
}

func TestMiddleware(t *testing.T) {
	initLang(t, "en")

	var got string
	h := Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = T(r.Context(), "SessionNotFound")
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept-Language", "zh-CN,zh;q=0.9")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "未找到该场次。" {
		t.Errorf("Accept-Language zh: got %q", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/?lang=en", nil)
	req.Header.Set("Accept-Language", "zh")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if got != "Session not found." {
		t.Errorf("lang=en: got %q", got)
	}
}
