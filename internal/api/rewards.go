package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/julianstephens/reto21d/internal/constants"
)

func (s *Server) getPoints(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, map[string]int{
		"total":              s.app.Points.Total(),
		"achievementsPoints": s.app.Achievements.UnlockedPoints(),
	})
}

func (s *Server) pointsHistory(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.app.Points.History())
}

func (s *Server) recordMoment(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Moment string `json:"moment"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	pts, err := s.app.RecordMoment(r.Context(), constants.Moment(body.Moment))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"pointsAwarded": pts, "total": s.app.Points.Total()})
}

func (s *Server) listAchievements(w http.ResponseWriter, r *http.Request) {
	statuses, err := s.app.Achievements.Statuses(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, statuses)
}

// checkAchievements runs a check; ?force=true re-evaluates unlocked ones too
func (s *Server) checkAchievements(w http.ResponseWriter, r *http.Request) {
	force := r.URL.Query().Get("force") == "true"
	fresh, err := s.app.CheckAchievements(r.Context(), force)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{"unlocked": fresh})
}

func (s *Server) achievementProgress(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]
	pct, err := s.app.Achievements.GetProgressTowardsAchievement(r.Context(), key)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"key":      key,
		"progress": pct,
		"unlocked": s.app.Achievements.IsAchievementUnlocked(key),
	})
}
