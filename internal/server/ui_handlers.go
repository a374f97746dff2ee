package server

import (
	_ "embed"
	"encoding/json"
	"net/http"

	"meeting-insights-backend/internal/types"
)

//go:embed static/index.html
var indexHTML []byte

const exampleTranscript = `Meeting Title: Project Alpha Sync
Date: 2025-06-10
Attendees: Alice, Bob, Charlie, Diana

Alice: Okay team, let's kick off. Bob, any updates on the user authentication module?
Bob: Yes, good progress. I've completed the backend logic and basic unit tests. I expect to have the API endpoints ready for integration by Wednesday. I did hit a snag with the new MFA library, it seems to have a conflict with our current logging setup. Will need some time to debug that, or find an alternative.
Alice: Okay, thanks Bob. Prioritize getting the core endpoints ready. We can tackle the MFA conflict as a separate issue if it becomes a blocker. Charlie, how are the UI mockups for the dashboard coming along?
Charlie: Almost there. I've incorporated the feedback from last week's review. I should have the final mockups ready for review by end of day tomorrow. Diana, could you schedule a 30-min review slot for Thursday morning?
Diana: Will do, Charlie. I'll send out an invite.
Alice: Great. And Diana, any updates on the Q3 marketing campaign proposal?
Diana: The draft is ready. Key focus areas are social media engagement and a partnership with 'TechExplained' YouTube channel. I need budget approval for the influencer collaboration, around $5,000.
Alice: Understood. Bob, please ensure your API docs are clear for Charlie. Charlie, focus on the main dashboard view. Diana, please send me the budget proposal by EOD today for review. Any other business? No? Okay, good meeting everyone.
`

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(indexHTML)
}

// GET /ui/example
func (s *Server) handleExample(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, types.InsightsRequest{Transcript: exampleTranscript})
}

// POST /ui/insights
// Always 200 with the display shape once the body decodes; failures are
// rendered into the fields by the client.
func (s *Server) handleUIInsights(w http.ResponseWriter, r *http.Request) {
	var req types.InsightsRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res := s.insights.Analyze(r.Context(), req.Transcript)
	s.writeJSON(w, http.StatusOK, res.Display())
}

// POST /ui/ask
func (s *Server) handleUIAsk(w http.ResponseWriter, r *http.Request) {
	var req types.QnARequest
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	res := s.qna.Ask(r.Context(), req.Transcript, req.Question)
	s.writeJSON(w, http.StatusOK, res.Display())
}
