package api

import (
	"net/http"
	"strconv"

	"github.com/julianstephens/reto21d/internal/models"
)

func (s *Server) listChallenges(w http.ResponseWriter, r *http.Request) {
	cs, err := s.app.Challenges.GetAll(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cs)
}

func (s *Server) activeChallenge(w http.ResponseWriter, r *http.Request) {
	c, err := s.app.SyncDay(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	if c == nil {
		respondWithError(w, http.StatusNotFound, "no active challenge")
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) startChallenge(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		StartDate   string `json:"startDate"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	c, err := s.app.StartChallenge(r.Context(), body.Name, body.Description, body.StartDate)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, c)
}

// completeDay takes {"day": n}; an empty body or day 0 completes the
// current day
func (s *Server) completeDay(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Day int `json:"day"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	res, err := s.app.CompleteChallengeDay(r.Context(), body.Day)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) updateChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var patch models.ChallengePatch
	if !decodeBody(w, r, &patch) {
		return
	}
	c, err := s.app.Challenges.Update(r.Context(), id, patch)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) deleteChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := s.app.Challenges.Delete(r.Context(), id); err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listMiniChallenges(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	ms, err := s.app.Challenges.GetMiniChallenges(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ms)
}

func (s *Server) completeMiniChallenge(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var body struct {
		Day int `json:"day"`
	}
	if r.ContentLength != 0 && !decodeBody(w, r, &body) {
		return
	}
	res, err := s.app.CompleteMiniChallenge(r.Context(), id, body.Day)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) listProgress(w http.ResponseWriter, r *http.Request) {
	ps, err := s.app.Progress.GetAll(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, ps)
}

// progressTrend takes ?days=n, default 7
func (s *Server) progressTrend(w http.ResponseWriter, r *http.Request) {
	n := 7
	if v := r.URL.Query().Get("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			respondWithError(w, http.StatusBadRequest, "Invalid days")
			return
		}
		n = parsed
	}
	trend, err := s.app.Progress.Trend(r.Context(), n)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, trend)
}

func (s *Server) weeklyComparison(w http.ResponseWriter, r *http.Request) {
	c, err := s.app.Challenges.GetActive(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	cmp, err := s.app.Progress.WeeklyComparison(r.Context(), c.CurrentDay)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cmp)
}
