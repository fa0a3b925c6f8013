package api

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/julianstephens/reto21d/internal/assessment"
	"github.com/julianstephens/reto21d/internal/models"
	"github.com/julianstephens/reto21d/internal/notifier"
	"github.com/julianstephens/reto21d/internal/privacy"
)

func (s *Server) getNotificationSettings(w http.ResponseWriter, r *http.Request) {
	respondWithJSON(w, http.StatusOK, s.app.Scheduler.Settings())
}

func (s *Server) saveNotificationSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.NotificationSettings
	if !decodeBody(w, r, &settings) {
		return
	}
	if err := s.app.Scheduler.SaveSettings(r.Context(), settings); err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, s.app.Scheduler.Settings())
}

func (s *Server) testNotification(w http.ResponseWriter, r *http.Request) {
	sent, err := s.app.Scheduler.SendNotification(r.Context(), notifier.Notification{
		Title: "Reto 21D",
		Body:  "Las notificaciones funcionan correctamente",
	})
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]bool{"sent": sent})
}

func (s *Server) getAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Assessments.Get(r.Context(), assessment.Kind(mux.Vars(r)["kind"]))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, a)
}

func (s *Server) saveAssessment(w http.ResponseWriter, r *http.Request) {
	var in models.AssessmentInput
	if !decodeBody(w, r, &in) {
		return
	}
	a, err := s.app.Assessments.Save(r.Context(), assessment.Kind(mux.Vars(r)["kind"]), in)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	respondWithJSON(w, http.StatusOK, a)
}

func (s *Server) completeAssessment(w http.ResponseWriter, r *http.Request) {
	a, err := s.app.Assessments.CompleteAssessment(r.Context(), assessment.Kind(mux.Vars(r)["kind"]))
	if err != nil {
		respondWithErr(w, err)
		return
	}
	s.app.Persist(r.Context())
	respondWithJSON(w, http.StatusOK, a)
}

func (s *Server) compareAssessments(w http.ResponseWriter, r *http.Request) {
	cmp, err := s.app.Assessments.CompareStored(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, cmp)
}

func (s *Server) getConsents(w http.ResponseWriter, r *http.Request) {
	c, err := s.app.Privacy.Consents(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

func (s *Server) updateConsent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Value bool `json:"value"`
	}
	if !decodeBody(w, r, &body) {
		return
	}
	c, err := s.app.Privacy.UpdateConsent(r.Context(), mux.Vars(r)["name"], body.Value)
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, c)
}

// exportData streams the export; ?format=json (default) or xlsx
func (s *Server) exportData(w http.ResponseWriter, r *http.Request) {
	format := privacy.FormatJSON
	if v := r.URL.Query().Get("format"); v != "" {
		parsed, err := privacy.ParseFormat(v)
		if err != nil {
			respondWithErr(w, err)
			return
		}
		format = parsed
	}

	bundle, err := s.app.ExportBundle(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}

	contentType := "application/json"
	if format == privacy.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", privacy.Filename(format, bundle)))
	if err := privacy.Export(w, format, bundle); err != nil {
		respondWithErr(w, err)
	}
}

func (s *Server) listDeletionRequests(w http.ResponseWriter, r *http.Request) {
	reqs, err := s.app.Privacy.DeletionRequests(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, reqs)
}

func (s *Server) requestDeletion(w http.ResponseWriter, r *http.Request) {
	req, err := s.app.Privacy.RequestDeletion(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, req)
}

func (s *Server) clearData(w http.ResponseWriter, r *http.Request) {
	n, err := s.app.ClearLocalData(r.Context())
	if err != nil {
		respondWithErr(w, err)
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]int{"keysRemoved": n})
}
