package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler, swaggerEnabled bool) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
	if !swaggerEnabled {
		return
	}

	mux.HandleFunc("GET /openapi.yaml", handler.OpenAPI)
	mux.HandleFunc("GET /docs", handler.SwaggerUI)
	mux.HandleFunc("GET /docs/", handler.SwaggerUI)
}

func registerPublicDomainRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/leagues", handler.ListLeagues)
	mux.HandleFunc("GET /v1/leagues/{leagueID}", handler.GetLeague)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members", handler.ListLeagueMembers)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members/{userID}/picks", handler.ListMemberPicks)
	mux.HandleFunc("GET /v1/leagues/{leagueID}/members/{userID}/life-events", handler.ListMemberLifeEvents)
	mux.HandleFunc("POST /v1/picks", handler.SubmitPick)
	mux.HandleFunc("GET /v1/rounds", handler.ListRounds)
	mux.HandleFunc("GET /v1/rounds/current", handler.GetCurrentRound)
	mux.HandleFunc("GET /v1/rounds/{roundID}/qualifying", handler.GetRoundQualifying)
}

func registerInternalJobRoutes(mux *http.ServeMux, handler *Handler, internalJobToken string) {
	mux.Handle("POST /v1/internal/jobs/rounds/{roundID}/results", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunRoundResultsJob)))
	mux.Handle("POST /v1/internal/jobs/rounds/{roundID}/autopick", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunAutoPickJob)))
	mux.Handle("DELETE /v1/internal/jobs/rounds/{roundID}/qualifying-cache", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.InvalidateQualifyingCache)))
	mux.Handle("POST /v1/internal/jobs/backfill", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RunBackfillJob)))
	mux.Handle("POST /v1/internal/leagues/{leagueID}/members/{userID}/restore-life", RequireInternalJobToken(internalJobToken, http.HandlerFunc(handler.RestoreMemberLife)))
}
