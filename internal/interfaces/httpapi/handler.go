package httpapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	sonic "github.com/bytedance/sonic"
	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/f1-survivor/internal/platform/logging"
	"github.com/riskibarqy/f1-survivor/internal/usecase"
)

type Handler struct {
	leagueService      *usecase.LeagueService
	roundService       *usecase.RoundService
	pickService        *usecase.PickService
	autoPickService    *usecase.AutoPickService
	eliminationService *usecase.EliminationService
	backfillService    *usecase.BackfillService
	qualifyingService  *usecase.QualifyingService
	logger             *logging.Logger
	validator          *validator.Validate
}

func NewHandler(
	leagueService *usecase.LeagueService,
	roundService *usecase.RoundService,
	pickService *usecase.PickService,
	autoPickService *usecase.AutoPickService,
	eliminationService *usecase.EliminationService,
	backfillService *usecase.BackfillService,
	qualifyingService *usecase.QualifyingService,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		leagueService:      leagueService,
		roundService:       roundService,
		pickService:        pickService,
		autoPickService:    autoPickService,
		eliminationService: eliminationService,
		backfillService:    backfillService,
		qualifyingService:  qualifyingService,
		logger:             logger,
		validator:          validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

// decodeJSON fills dst from the request body, rejecting unknown fields. An
// empty body is an error; callers with optional bodies use decodeJSONAllowEmpty.
func decodeJSON(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func decodeJSONAllowEmpty(r *http.Request, dst any) error {
	decoder := sonic.ConfigDefault.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("%w: invalid JSON payload: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}
