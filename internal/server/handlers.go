package server

import (
	"net/http"
	"net/url"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"lifequest/internal/auth"
	"lifequest/internal/engine"
	"lifequest/internal/storage"
)

type sessionResponse struct {
	SessionID string `json:"session_id"`
}

type accountResponse struct {
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type habitRequest struct {
	Name   string `json:"name"`
	Points int    `json:"points"`
}

type rewardRequest struct {
	Name string `json:"name"`
	Cost int    `json:"cost"`
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	e := s.sessions.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    e.id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	s.logger.Info("session created", zap.String("session", e.id))
	writeJSON(w, http.StatusCreated, sessionResponse{SessionID: e.id})
}

func (s *Server) handleEndSession(w http.ResponseWriter, r *http.Request) {
	e := entryFrom(r.Context())
	s.sessions.Delete(e.id)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	acct, err := entryFrom(r.Context()).gate.Signup(r.Context(), in)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusCreated, toAccountResponse(acct))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in loginRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	acct, err := entryFrom(r.Context()).gate.Login(r.Context(), in.Username, in.Password)
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, toAccountResponse(acct))
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	entryFrom(r.Context()).gate.Logout()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	snap, err := entryFrom(r.Context()).session.View()
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *Server) handleProgress(w http.ResponseWriter, r *http.Request) {
	p, err := entryFrom(r.Context()).session.Progress()
	if err != nil {
		s.fail(w, r, err, nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) handleAddHabit(w http.ResponseWriter, r *http.Request) {
	var in habitRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	s.apply(w, r, engine.Command{Kind: engine.CmdAddHabit, Name: in.Name, Amount: in.Points}, http.StatusCreated)
}

func (s *Server) handleAddReward(w http.ResponseWriter, r *http.Request) {
	var in rewardRequest
	if !decodeJSON(w, r, &in) {
		return
	}
	s.apply(w, r, engine.Command{Kind: engine.CmdAddReward, Name: in.Name, Amount: in.Cost}, http.StatusCreated)
}

// handleNamed dispatches a command that targets the {name} path variable.
func (s *Server) handleNamed(kind engine.CommandKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name, err := url.PathUnescape(mux.Vars(r)["name"])
		if err != nil {
			writeError(w, http.StatusBadRequest, "bad_request", "invalid name escape")
			return
		}
		s.apply(w, r, engine.Command{Kind: kind, Name: name}, http.StatusOK)
	}
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	var kind engine.CommandKind
	switch mux.Vars(r)["scope"] {
	case "habits":
		kind = engine.CmdResetHabits
	case "rewards":
		kind = engine.CmdResetRewards
	case "all":
		kind = engine.CmdResetAll
	default:
		writeError(w, http.StatusNotFound, "not_found", "reset scope must be habits, rewards or all")
		return
	}
	s.apply(w, r, engine.Command{Kind: kind}, http.StatusOK)
}

func (s *Server) apply(w http.ResponseWriter, r *http.Request, cmd engine.Command, okStatus int) {
	e := entryFrom(r.Context())
	out, err := e.session.Apply(cmd)
	if err != nil {
		var snap *engine.Snapshot
		if e.session.IsLoggedIn() {
			snap = &out.Snapshot
		}
		s.fail(w, r, err, snap)
		return
	}
	s.logger.Debug("command applied",
		zap.String("session", e.id),
		zap.String("kind", string(cmd.Kind)),
		zap.String("name", cmd.Name),
		zap.Int("delta", out.Delta),
		zap.Int("balance", out.Snapshot.TotalPoints))
	writeJSON(w, okStatus, out)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error, snap *engine.Snapshot) {
	status, code := classify(err)
	if status == http.StatusInternalServerError {
		s.logger.Error("request failed", zap.String("path", r.URL.Path), zap.Error(err))
	}
	writeJSON(w, status, errorBody{Error: err.Error(), Code: code, State: snap})
}

func toAccountResponse(a *storage.Account) accountResponse {
	return accountResponse{Username: a.Username, DisplayName: a.DisplayName()}
}
