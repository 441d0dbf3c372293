package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/angelmondragon/procureflow-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/procureflow-backend/pkg/errors"
)

func TestSanitizeString(t *testing.T) {
	cases := []struct {
		in     string
		maxLen int
		want   string
	}{
		{"  Cement   bags \n", 0, "Cement bags"},
		{"Ingeniería Civil", 10, "Ingeniería"},
		{"abc\x00def", 0, "abcdef"},
		{"ab cd", 3, "ab"},
		{"   ", 5, ""},
	}
	for _, tc := range cases {
		if got := SanitizeString(tc.in, tc.maxLen); got != tc.want {
			t.Fatalf("SanitizeString(%q, %d) = %q, want %q", tc.in, tc.maxLen, got, tc.want)
		}
	}
}

type itemBody struct {
	Condition enums.ItemCondition `json:"condition" validate:"required,enum"`
	UnitPrice decimal.Decimal     `json:"unitPrice" validate:"money"`
}

type noteBody struct {
	Urgency enums.Urgency    `json:"urgency" validate:"omitempty,enum"`
	Amount  *decimal.Decimal `json:"amount" validate:"omitempty,money"`
	Items   []itemBody       `json:"items" validate:"required,min=1,dive"`
}

func decode(t *testing.T, body string) (noteBody, error) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var dest noteBody
	err := DecodeJSONBody(req, &dest)
	return dest, err
}

func TestDecodeJSONBodyAcceptsValidPayload(t *testing.T) {
	got, err := decode(t, `{"amount":"1200.50","items":[{"condition":"good","unitPrice":"10"}]}`)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Amount == nil || got.Amount.String() != "1200.5" {
		t.Fatalf("unexpected amount %v", got.Amount)
	}
}

func TestDecodeJSONBodyRejectsDomainViolations(t *testing.T) {
	cases := map[string]struct {
		body  string
		field string
	}{
		"unknown condition": {`{"items":[{"condition":"broken","unitPrice":"1"}]}`, "items[0].condition"},
		"negative price":    {`{"items":[{"condition":"good","unitPrice":"-1"}]}`, "items[0].unitPrice"},
		"negative amount":   {`{"amount":"-5","items":[{"condition":"good","unitPrice":"1"}]}`, "amount"},
		"sub-cent amount":   {`{"amount":"1000000.004","items":[{"condition":"good","unitPrice":"1"}]}`, "amount"},
		"sub-cent price":    {`{"items":[{"condition":"good","unitPrice":"0.005"}]}`, "items[0].unitPrice"},
		"bad urgency":       {`{"urgency":"asap","items":[{"condition":"good","unitPrice":"1"}]}`, "urgency"},
		"no items":          {`{"items":[]}`, "items"},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := decode(t, tc.body)
			typed := pkgerrors.As(err)
			if typed == nil || typed.Code() != pkgerrors.CodeValidation {
				t.Fatalf("expected validation error, got %v", err)
			}
			details, ok := typed.Details().(map[string]string)
			if !ok {
				t.Fatalf("expected field details, got %T", typed.Details())
			}
			if _, ok := details[tc.field]; !ok {
				t.Fatalf("expected detail for %s, got %v", tc.field, details)
			}
		})
	}
}

func TestDecodeJSONBodyRejectsMalformedInput(t *testing.T) {
	for _, body := range []string{
		`{"items":[{"condition":"good"}],"extra":true}`,
		`{"items":[{"condition":"good"}]} {"items":[]}`,
		`not json`,
	} {
		if _, err := decode(t, body); pkgerrors.As(err) == nil {
			t.Fatalf("expected validation error for %q", body)
		}
	}
}

func TestDecodeJSONBodyLimitsSize(t *testing.T) {
	huge := `{"urgency":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	_, err := decode(t, huge)
	typed := pkgerrors.As(err)
	if typed == nil || typed.Message() != "request body too large" {
		t.Fatalf("expected size error, got %v", err)
	}
}

func TestParseQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=20&bad=x&big=900", nil)
	if got, err := ParseQueryInt(req, "limit", 100, 1, 500); err != nil || got != 20 {
		t.Fatalf("expected 20, got %d %v", got, err)
	}
	if got, _ := ParseQueryInt(req, "missing", 100, 1, 500); got != 100 {
		t.Fatalf("expected default, got %d", got)
	}
	if _, err := ParseQueryInt(req, "bad", 100, 1, 500); err == nil {
		t.Fatal("expected error for non numeric value")
	}
	if _, err := ParseQueryInt(req, "big", 100, 1, 500); err == nil {
		t.Fatal("expected error for out of range value")
	}
}

func TestParseQueryBoolAndEnum(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?unreadOnly=1&stage=draft&status=lost", nil)

	if got, err := ParseQueryBool(req, "unreadOnly"); err != nil || !got {
		t.Fatalf("expected true, got %v %v", got, err)
	}
	if got, err := ParseQueryBool(req, "missing"); err != nil || got {
		t.Fatalf("expected false default, got %v %v", got, err)
	}

	stage, err := ParseQueryEnum[enums.MRFStage](req, "stage")
	if err != nil || stage != enums.MRFStageDraft {
		t.Fatalf("expected draft stage, got %q %v", stage, err)
	}
	if stage, err := ParseQueryEnum[enums.MRFStage](req, "missing"); err != nil || stage != "" {
		t.Fatalf("expected empty filter, got %q %v", stage, err)
	}

	_, err = ParseQueryEnum[enums.GRNStatus](req, "status")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	if details, _ := typed.Details().(map[string]string); details["status"] == "" {
		t.Fatalf("expected status detail, got %v", typed.Details())
	}
}
