package api

import (
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"math/rand/v2"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/timeblind/timeblind-go/internal/captcha"
	"github.com/timeblind/timeblind-go/internal/mask"
	"github.com/timeblind/timeblind-go/internal/store"
	"github.com/timeblind/timeblind-go/internal/verify"
)

// handleNewChallenge issues a challenge: generate, persist the answer with
// TTL and attempt budget, return the video inline.
func (s *Server) handleNewChallenge(w http.ResponseWriter, r *http.Request) {
	var req NewChallengeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", map[string]interface{}{
			"error": err.Error(),
		})
		return
	}

	modeName := req.Mode
	if modeName == "" || modeName == "random" {
		modeName = []string{"text", "shape", "depth"}[rand.IntN(3)]
		// Depth needs a caller-supplied image; without one fall through to
		// the self-contained modes.
		if modeName == "depth" && req.DepthImage == "" {
			modeName = []string{"text", "shape"}[rand.IntN(2)]
		}
	}
	mode, err := mask.ParseMode(modeName)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	genReq, err := s.buildRequest(mode, &req)
	if err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, err.Error(), nil)
		return
	}

	ch, err := s.generate(r.Context(), genReq)
	if err != nil && captcha.Recoverable(err) && mode != mask.ModeText {
		// Retry with text mode, the self-contained fallback.
		s.logger.Printf("generation_fallback request_id=%s mode=%s err=%q",
			middleware.GetReqID(r.Context()), mode, err)
		mode = mask.ModeText
		genReq = captcha.Request{Mode: mode, Tier: captcha.Tier(req.Difficulty)}
		ch, err = s.generate(r.Context(), genReq)
	}
	if err != nil {
		status, errType := classifyError(err)
		s.writeError(w, r, status, errType, err.Error(), map[string]interface{}{
			"mode": modeName,
		})
		return
	}

	now := time.Now()
	rec := &store.Challenge{
		Mode:        mode.String(),
		Answer:      ch.Answer,
		Hint:        ch.Hint,
		Difficulty:  string(genReq.Tier),
		MaxAttempts: MaxAttempts,
		CreatedAt:   now,
		ExpiresAt:   now.Add(ChallengeTTL),
	}
	if err := s.db.SaveChallenge(r.Context(), rec); err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to store challenge", nil)
		return
	}

	// Ground truth never reaches the logs in the clear.
	s.logger.Printf(
		"challenge_issued request_id=%s id=%s mode=%s difficulty=%s frames=%d video_bytes=%d answer_hash=%s",
		middleware.GetReqID(r.Context()), rec.ID, rec.Mode, rec.Difficulty,
		ch.FrameCount, len(ch.Video), hashTruth(ch.Answer),
	)

	s.writeJSON(w, http.StatusOK, NewChallengeResponse{
		ID:          rec.ID,
		Mode:        rec.Mode,
		VideoBase64: base64.StdEncoding.EncodeToString(ch.Video),
		Hint:        rec.Hint,
		ExpiresAt:   rec.ExpiresAt.Unix(),
	})
}

// buildRequest maps the wire request onto a generation request.
func (s *Server) buildRequest(mode mask.Mode, req *NewChallengeRequest) (captcha.Request, error) {
	out := captcha.Request{
		Mode: mode,
		Tier: captcha.Tier(req.Difficulty),
		Seed: req.Seed,
	}
	switch mode {
	case mask.ModeText:
		out.Params.Word = req.Word
	case mask.ModeShape:
		out.Params.Shape = req.Shape
	case mask.ModeDepth:
		img, err := decodeDepthImage(req.DepthImage)
		if err != nil {
			return captcha.Request{}, err
		}
		out.Params.DepthImage = img
		out.Params.ThresholdLow = req.ThresholdLow
		out.Params.ThresholdHigh = req.ThresholdHigh
	}
	return out, nil
}

// decodeDepthImage accepts raw base64 or a data: URL payload.
func decodeDepthImage(s string) ([]byte, error) {
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

// handleVerify checks a submitted answer, consuming the challenge on
// success and enforcing TTL and the attempt budget.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "Invalid JSON format", nil)
		return
	}
	if req.ID == "" {
		s.writeError(w, r, http.StatusBadRequest, ErrTypeValidation, "id is required", nil)
		return
	}

	rec, ok := s.loadLive(w, r, req.ID)
	if !ok {
		return
	}
	if rec.Exhausted() {
		s.db.Delete(r.Context(), req.ID)
		s.writeJSON(w, http.StatusOK, VerifyResponse{Success: false, Message: "Too many attempts, challenge invalidated"})
		return
	}

	attempts, err := s.db.RecordAttempt(r.Context(), req.ID)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to record attempt", nil)
		return
	}

	mode, _ := mask.ParseMode(rec.Mode)
	ok = verify.Match(mode, rec.Answer, req.Answer)

	s.logger.Printf(
		"verify request_id=%s id=%s mode=%s attempts=%d success=%t answer_hash=%s",
		middleware.GetReqID(r.Context()), req.ID, rec.Mode, attempts, ok, hashTruth(req.Answer),
	)

	if ok {
		s.db.Delete(r.Context(), req.ID)
		s.writeJSON(w, http.StatusOK, VerifyResponse{Success: true, Message: "Verification passed"})
		return
	}
	s.writeJSON(w, http.StatusOK, VerifyResponse{Success: false, Message: "Incorrect answer"})
}

// handleHint returns the hint for a live challenge, at the cost of one
// attempt.
func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	rec, ok := s.loadLive(w, r, id)
	if !ok {
		return
	}
	if rec.Exhausted() {
		s.db.Delete(r.Context(), id)
		s.writeError(w, r, http.StatusGone, ErrTypeTooManyAttempts, "Too many attempts, challenge invalidated", nil)
		return
	}

	attempts, err := s.db.RecordAttempt(r.Context(), id)
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to record attempt", nil)
		return
	}

	s.writeJSON(w, http.StatusOK, HintResponse{Hint: rec.Hint, Attempts: attempts})
}

// handleModes lists the supported challenge modes.
func (s *Server) handleModes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, ModesResponse{
		Modes:  []string{"text", "shape", "depth"},
		Shapes: mask.ShapeNames,
	})
}

// loadLive fetches a challenge and rejects missing or expired records.
func (s *Server) loadLive(w http.ResponseWriter, r *http.Request, id string) (*store.Challenge, bool) {
	rec, err := s.db.GetChallenge(r.Context(), id)
	if err == store.ErrNotFound {
		s.writeError(w, r, http.StatusNotFound, ErrTypeNotFound, "Challenge not found or expired", nil)
		return nil, false
	}
	if err != nil {
		s.writeError(w, r, http.StatusInternalServerError, ErrTypeInternal, "Failed to load challenge", nil)
		return nil, false
	}
	if rec.Expired(time.Now()) {
		s.db.Delete(r.Context(), id)
		s.writeError(w, r, http.StatusNotFound, ErrTypeExpired, "Challenge expired", nil)
		return nil, false
	}
	return rec, true
}

// classifyError maps pipeline failures onto HTTP statuses and error types.
func classifyError(err error) (int, string) {
	switch {
	case captcha.InvalidParams(err):
		return http.StatusBadRequest, ErrTypeValidation
	case isMaskDegenerate(err):
		return http.StatusUnprocessableEntity, ErrTypeDegenerateMask
	case isDecodeError(err):
		return http.StatusBadRequest, ErrTypeDecode
	case isEncoderUnavailable(err):
		return http.StatusServiceUnavailable, ErrTypeServiceUnavailable
	default:
		return http.StatusInternalServerError, ErrTypeEncoding
	}
}

// hashTruth returns a short SHA-256 prefix so answers can be correlated in
// logs without being exposed.
func hashTruth(s string) string {
	h := sha256.Sum256([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(h[:])[:16]
}
