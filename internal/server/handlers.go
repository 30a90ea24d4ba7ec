package server

import (
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/maxbolgarin/gitctx/internal/model"
	"github.com/maxbolgarin/gitctx/internal/validate"
)

func (s *Server) handleContext(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	gc, err := s.provider.GetContext(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, gc)
}

func (s *Server) handleRepository(w http.ResponseWriter, r *http.Request) {
	info, err := s.provider.GetRepositoryInfo(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, info)
}

func (s *Server) handleBranch(w http.ResponseWriter, r *http.Request) {
	info, err := s.provider.GetCurrentBranch(r.Context())
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, info)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	status, err := s.provider.GetStatus(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, status)
}

func (s *Server) handleCommits(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, err)
		return
	}

	if value := r.URL.Query().Get("since"); value != "" {
		since, err := time.Parse(time.RFC3339, value)
		if err != nil {
			s.respondError(w, &model.ValidationError{
				Schema: "since",
				Value:  value,
				Cause:  "not an RFC3339 timestamp",
			})
			return
		}

		commits, err := s.provider.GetCommitsSince(r.Context(), since, opts)
		if err != nil {
			s.respondError(w, err)
			return
		}
		s.respond(w, commits)
		return
	}

	commits, err := s.provider.GetRecentCommits(r.Context(), opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, commits)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	opts, err := parseOptions(r)
	if err != nil {
		s.respondError(w, err)
		return
	}
	staged, err := queryBool(r.URL.Query(), "staged", false)
	if err != nil {
		s.respondError(w, err)
		return
	}

	diff, err := s.provider.GetDiff(r.Context(), staged, opts)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, diff)
}

func (s *Server) handleDiffStats(w http.ResponseWriter, r *http.Request) {
	staged, err := queryBool(r.URL.Query(), "staged", false)
	if err != nil {
		s.respondError(w, err)
		return
	}

	stats, err := s.provider.GetDiffStats(r.Context(), staged)
	if err != nil {
		s.respondError(w, err)
		return
	}
	s.respond(w, stats)
}

// parseOptions reads the shared query parameters (untracked, commits,
// context_lines, raw) on top of the documented defaults and validates the
// resulting bundle. Sanitization stays on unless raw=true is passed.
func parseOptions(r *http.Request) (model.ContextOptions, error) {
	opts := model.DefaultContextOptions()
	q := r.URL.Query()

	var err error
	if opts.IncludeUntracked, err = queryBool(q, "untracked", opts.IncludeUntracked); err != nil {
		return opts, err
	}
	if opts.MaxCommits, err = queryInt(q, "commits", opts.MaxCommits); err != nil {
		return opts, err
	}
	if opts.DiffContextLines, err = queryInt(q, "context_lines", opts.DiffContextLines); err != nil {
		return opts, err
	}
	raw, err := queryBool(q, "raw", false)
	if err != nil {
		return opts, err
	}
	if raw {
		opts.SanitizeForAI = false
	}

	return opts, validate.Options(opts)
}

func queryBool(q url.Values, name string, def bool) (bool, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return def, &model.ValidationError{Schema: name, Value: raw, Cause: "not a boolean"}
	}
	return v, nil
}

func queryInt(q url.Values, name string, def int) (int, error) {
	raw := q.Get(name)
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return def, &model.ValidationError{Schema: name, Value: raw, Cause: "not an integer"}
	}
	return v, nil
}
