package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/vivalearn/lti-tool/internal/assignment"
	"github.com/vivalearn/lti-tool/internal/rbac"
)

var checker = rbac.NewChecker(nil)

// AssignmentViewHandler renders the assignment for the launched resource
// link: instructors see every submission plus the settings form, students see
// their own work and, when allowed, a submit form.
func AssignmentViewHandler(store assignment.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := IdentityFromContext(r.Context())
		role := rbac.RoleFromContext(r.Context())

		a, err := store.GetAssignment(r.Context(), claims.ResourceLink.ID)
		if err != nil {
			if errors.Is(err, assignment.ErrNotFound) {
				http.Error(w, "assignment not found", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Msg("assignment load failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		viewAll := checker.Has(role, "submission:view-all")
		var subs []assignment.Submission
		if viewAll {
			subs, err = store.ListAllSubmissions(r.Context(), a.ResourceLinkID)
		} else {
			subs, err = store.ListSubmissions(r.Context(), a.ResourceLinkID, claims.Subject)
		}
		if err != nil {
			log.Error().Err(err).Msg("submissions load failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		canSubmit := !viewAll && checker.Has(role, "submission:create") &&
			(a.AllowMultiple || len(subs) == 0)

		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = assignmentTmpl.Execute(w, struct {
			Assignment  assignment.Assignment
			Submissions []assignment.Submission
			CanEdit     bool
			CanGrade    bool
			CanSubmit   bool
		}{a, subs, checker.Has(role, "assignment:edit"), checker.Has(role, "submission:grade"), canSubmit})
	}
}

// AssignmentEditHandler saves instructor changes to the assignment settings.
func AssignmentEditHandler(store assignment.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := IdentityFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		a := assignment.Assignment{
			ResourceLinkID: claims.ResourceLink.ID,
			Title:          r.PostFormValue("title"),
			Description:    r.PostFormValue("description"),
			AllowMultiple:  r.PostFormValue("allow_multiple") == "true",
		}
		if a.Title == "" {
			http.Error(w, "title is required", http.StatusBadRequest)
			return
		}
		if err := store.UpdateAssignment(r.Context(), a); err != nil {
			log.Error().Err(err).Msg("assignment update failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/assignment", http.StatusFound)
	}
}

// SubmitTextHandler records a student's text submission.
func SubmitTextHandler(store assignment.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := IdentityFromContext(r.Context())
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		body := r.PostFormValue("body")
		if body == "" {
			http.Error(w, "empty submission", http.StatusBadRequest)
			return
		}
		sub := assignment.Submission{
			ID:             uuid.NewString(),
			ResourceLinkID: claims.ResourceLink.ID,
			UserID:         claims.Subject,
			Body:           body,
			CreatedAt:      time.Now().Unix(),
		}
		if err := store.CreateSubmission(r.Context(), sub); err != nil {
			if errors.Is(err, assignment.ErrAlreadySubmitted) {
				http.Error(w, "this assignment accepts one submission", http.StatusConflict)
				return
			}
			if errors.Is(err, assignment.ErrNotFound) {
				http.Error(w, "assignment not found", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Msg("submission create failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/assignment", http.StatusFound)
	}
}

// GradeSubmissionHandler records an instructor's grade and comment.
func GradeSubmissionHandler(store assignment.Store, log zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "bad form", http.StatusBadRequest)
			return
		}
		id := r.PostFormValue("submission_id")
		grade, err := strconv.ParseFloat(r.PostFormValue("grade"), 64)
		if id == "" || err != nil {
			http.Error(w, "submission_id and numeric grade required", http.StatusBadRequest)
			return
		}
		if err := store.GradeSubmission(r.Context(), id, grade, r.PostFormValue("comment")); err != nil {
			if errors.Is(err, assignment.ErrNotFound) {
				http.Error(w, "submission not found", http.StatusNotFound)
				return
			}
			log.Error().Err(err).Msg("grade update failed")
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		http.Redirect(w, r, "/assignment", http.StatusFound)
	}
}

// LandingHandler is the generic fallback destination for launches that are
// neither resource links nor deep-linking requests.
func LandingHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, _ := IdentityFromContext(r.Context())
		name, course := "Unknown User", "Unknown Course"
		if claims != nil {
			if claims.Name != "" {
				name = claims.Name
			}
			if claims.Context.Title != "" {
				course = claims.Context.Title
			}
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_ = landingTmpl.Execute(w, struct{ Name, Course string }{name, course})
	}
}
