package api

import (
	"net/http"

	"github.com/julianstephens/reto21d/internal/models"
)

func (s *Server) getSummary(w http.ResponseWriter, r *http.Request) {
	sum, err := s.app.Summary(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sum)
}

func (s *Server) listHabits(w http.ResponseWriter, r *http.Request) {
	hs, err := s.app.Habits.GetAll(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, hs)
}

func (s *Server) getHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	h, err := s.app.Habits.GetByID(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, h)
}

func (s *Server) createHabit(w http.ResponseWriter, r *http.Request) {
	var h models.Habit
	if !decodeBody(w, r, &h) {
		return
	}
	created, unlocked, err := s.app.CreateHabit(r.Context(), h)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, struct {
		models.Habit
		Unlocked []models.Achievement `json:"unlocked,omitempty"`
	}{created, unlocked})
}

func (s *Server) updateHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	var patch models.HabitPatch
	if !decodeBody(w, r, &patch) {
		return
	}
	h, err := s.app.Habits.Update(r.Context(), id, patch)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	respondWithJSON(w, http.StatusOK, h)
}

func (s *Server) deleteHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	if err := s.app.Habits.Delete(r.Context(), id); err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) toggleHabit(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	res, err := s.app.ToggleHabit(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, res)
}

func (s *Server) habitStreaks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathInt(w, r, "id")
	if !ok {
		return
	}
	h, err := s.app.Habits.GetByID(r.Context(), id)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s.app.Habits.CalculateStreaks(h))
}
