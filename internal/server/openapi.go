package server

import (
	"encoding/json"
	"net/http"

	openapi "github.com/swaggest/openapi-go"
	"github.com/swaggest/openapi-go/openapi3"

	"github.com/Chiroru76/hokkaido-place-quiz/internal/handler/health"
)

// NextQuestionResult is either the current question or the completion
// marker.
type NextQuestionResult struct{}

func (NextQuestionResult) JSONSchemaOneOf() []any {
	return []any{QuestionResponse{}, CompletedResponse{}}
}

// AnswerResult is either the verdict or, for a finished session, the
// completion marker.
type AnswerResult struct{}

func (AnswerResult) JSONSchemaOneOf() []any {
	return []any{AnswerResponse{}, CompletedResponse{}}
}

func newOpenAPISpec() *openapi3.Spec {
	r := openapi3.NewReflector()
	r.Spec.Info.Title = "Place Quiz API"
	r.Spec.Info.Version = "1.0.0"
	r.Spec.Info.WithDescription("Reading quiz over Hokkaido municipality names.")

	// GET /healthz
	getHealthz, _ := r.NewOperationContext(http.MethodGet, "/healthz")
	getHealthz.SetSummary("Health check")
	getHealthz.SetDescription("Returns the health status of backend dependencies.")
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusOK))
	getHealthz.AddRespStructure(health.Response{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(getHealthz)

	// POST /api/v1/sessions
	postSession, _ := r.NewOperationContext(http.MethodPost, "/api/v1/sessions")
	postSession.SetSummary("Start a quiz")
	postSession.SetDescription("Samples places and starts a session. total may also come from the query string. A missing, non-numeric or non-positive total means 10.")
	postSession.AddReqStructure(CreateSessionRequest{})
	postSession.AddRespStructure(CreateSessionResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postSession.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusServiceUnavailable))
	_ = r.AddOperation(postSession)

	// GET /api/v1/questions/next
	getNext, _ := r.NewOperationContext(http.MethodGet, "/api/v1/questions/next")
	getNext.SetSummary("Current question")
	getNext.SetDescription("Returns the question the session is waiting on, or a completion marker. Never changes the session.")
	getNext.AddReqStructure(NextQuestionParams{})
	getNext.AddRespStructure(NextQuestionResult{}, openapi.WithHTTPStatus(http.StatusOK))
	getNext.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getNext)

	// POST /api/v1/questions/{id}/answer
	postAnswer, _ := r.NewOperationContext(http.MethodPost, "/api/v1/questions/{id}/answer")
	postAnswer.SetSummary("Submit answer")
	postAnswer.SetDescription("Scores an answer for the current question. 422 means the question id is stale; fetch the next question again.")
	postAnswer.AddReqStructure(AnswerParams{})
	postAnswer.AddRespStructure(AnswerResult{}, openapi.WithHTTPStatus(http.StatusOK))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusBadRequest))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	postAnswer.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusUnprocessableEntity))
	_ = r.AddOperation(postAnswer)

	// GET /api/v1/results/{sessionID}
	getResult, _ := r.NewOperationContext(http.MethodGet, "/api/v1/results/{sessionID}")
	getResult.SetSummary("Session result")
	getResult.SetDescription("Score and accuracy so far. Works before the last question is answered.")
	getResult.AddReqStructure(ResultParams{})
	getResult.AddRespStructure(ResultResponse{}, openapi.WithHTTPStatus(http.StatusOK))
	getResult.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getResult)

	// GET /api/v1/sessions/{sessionID}/events
	getEvents, _ := r.NewOperationContext(http.MethodGet, "/api/v1/sessions/{sessionID}/events")
	getEvents.SetSummary("SSE event stream")
	getEvents.SetDescription("Server-Sent Events for answers scored in this session.")
	getEvents.AddReqStructure(ResultParams{})
	getEvents.AddRespStructure(nil, openapi.WithHTTPStatus(http.StatusOK),
		openapi.WithContentType("text/event-stream"))
	getEvents.AddRespStructure(ErrorResponse{}, openapi.WithHTTPStatus(http.StatusNotFound))
	_ = r.AddOperation(getEvents)

	return r.Spec
}

func handleOpenAPI() http.HandlerFunc {
	spec := newOpenAPISpec()
	data, _ := json.MarshalIndent(spec, "", "  ")

	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}
}
