package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	domain "lendmatch/internal/domain/loan"
	"lendmatch/internal/domain/match"
	"lendmatch/internal/infrastructure/logger"
	"lendmatch/internal/testutil/loanmock"
	"lendmatch/internal/testutil/matchmock"
	loanuc "lendmatch/internal/usecase/loan"
	"lendmatch/internal/usecase/matching"
)

var (
	loanID  = strings.Repeat("a", 32)
	matchID = strings.Repeat("c", 32)
)

func containsFieldMsg(list []FieldError, field, substr string) bool {
	for _, e := range list {
		if e.Field == field && strings.Contains(e.Message, substr) {
			return true
		}
	}
	return false
}

// fakeService records the last call and returns err (when set) or a canned result.
type fakeService struct {
	err      error
	loanID   string
	offer    matching.OfferInput
	decline  matching.DeclineInput
	limit    int
	sweepOut *matching.SweepResult
}

func (f *fakeService) StartMatching(_ context.Context, id string) (*matching.Result, error) {
	f.loanID = id
	if f.err != nil {
		return nil, f.err
	}
	return &matching.Result{LoanID: id, Status: "matching", Attempt: 1, Matches: []loanuc.MatchDTO{}}, nil
}

func (f *fakeService) Rematch(_ context.Context, id string) (*matching.Result, error) {
	f.loanID = id
	if f.err != nil {
		return nil, f.err
	}
	return &matching.Result{LoanID: id, Status: "matching", Attempt: 2, Matches: []loanuc.MatchDTO{}}, nil
}

func (f *fakeService) AcceptOffer(_ context.Context, in matching.OfferInput) (*matching.OfferResult, error) {
	f.offer = in
	if f.err != nil {
		return nil, f.err
	}
	return &matching.OfferResult{Match: loanuc.MatchDTO{MatchID: in.MatchID, Status: "accepted"}}, nil
}

func (f *fakeService) DeclineOffer(_ context.Context, in matching.DeclineInput) (*matching.OfferResult, error) {
	f.decline = in
	if f.err != nil {
		return nil, f.err
	}
	return &matching.OfferResult{Match: loanuc.MatchDTO{MatchID: in.MatchID, Status: "declined"}}, nil
}

func (f *fakeService) SweepExpired(_ context.Context, limit int) (*matching.SweepResult, error) {
	f.limit = limit
	if f.err != nil {
		return nil, f.err
	}
	if f.sweepOut != nil {
		return f.sweepOut, nil
	}
	return &matching.SweepResult{}, nil
}

type server struct {
	e     *echo.Echo
	svc   *fakeService
	loans *loanmock.Repo
	recs  *matchmock.Repo
}

func newServer(t *testing.T, probes ...Probe) *server {
	t.Helper()
	s := &server{
		e:   echo.New(),
		svc: &fakeService{},
		loans: &loanmock.Repo{
			GetByLoanIDFn: func(ctx context.Context, id string) (*domain.Loan, error) {
				return nil, gorm.ErrRecordNotFound
			},
		},
		recs: &matchmock.Repo{
			ListByLoanFn: func(ctx context.Context, id uint64) ([]*match.Record, error) { return nil, nil },
		},
	}
	s.e.Validator = NewValidator()
	log := logger.NewTestLogger(t)
	Register(s.e,
		NewHandler(probes...),
		NewLoanHandler(loanuc.NewUsecase(s.loans, s.recs), log),
		NewMatchingHandler(s.svc, log, 50),
	)
	return s
}

func (s *server) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r *bytes.Reader
	switch b := body.(type) {
	case nil:
		r = bytes.NewReader(nil)
	case string:
		r = bytes.NewReader([]byte(b))
	default:
		raw, err := json.Marshal(b)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, r)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var er ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &er); err != nil {
		t.Fatalf("bad json: %v; raw=%s", err, rec.Body.String())
	}
	return er
}

type probeFunc struct {
	name string
	err  error
}

func (p probeFunc) Name() string                    { return p.name }
func (p probeFunc) Check(ctx context.Context) error { return p.err }
