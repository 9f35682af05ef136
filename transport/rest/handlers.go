package rest

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hoshinomegami/BugcatTicTacToeWeb/internal/entity"
)

type createSessionRequest struct {
	Mode       string `json:"mode" validate:"omitempty,oneof=pvp ai"`
	Difficulty string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Symbol     string `json:"symbol" validate:"omitempty,oneof=X O"`
}

type moveRequest struct {
	Position *int `json:"position" validate:"required"`
}

type resetRequest struct {
	Symbol string `json:"symbol" validate:"omitempty,oneof=X O"`
}

type settingsRequest struct {
	Mode       *string `json:"mode" validate:"omitempty,oneof=pvp ai"`
	Difficulty *string `json:"difficulty" validate:"omitempty,oneof=easy medium hard"`
	Symbol     *string `json:"symbol" validate:"omitempty,oneof=X O"`
}

func (that *Server) createSession(c *gin.Context) {
	var req createSessionRequest
	if err := bindOptional(c, &req); err != nil {
		that.fail(c, err)
		return
	}

	settings := that.defaults
	if req.Mode != "" {
		settings.Mode = entity.Mode(req.Mode)
	}
	if req.Difficulty != "" {
		settings.Difficulty = entity.Difficulty(req.Difficulty)
	}
	if req.Symbol != "" {
		settings.HumanMark = entity.Mark(req.Symbol)
	}

	session, err := that.manager.CreateSession(c.Request.Context(), settings)
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) getSession(c *gin.Context) {
	session, err := that.manager.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) makeMove(c *gin.Context) {
	var req moveRequest
	if err := bind(c, &req); err != nil {
		that.fail(c, err)
		return
	}

	session, err := that.manager.MakeMove(c.Request.Context(), c.Param("id"), *req.Position)
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) resetGame(c *gin.Context) {
	var req resetRequest
	if err := bindOptional(c, &req); err != nil {
		that.fail(c, err)
		return
	}

	var humanMark *entity.Mark
	if req.Symbol != "" {
		mark := entity.Mark(req.Symbol)
		humanMark = &mark
	}

	session, err := that.manager.ResetGame(c.Request.Context(), c.Param("id"), humanMark)
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) updateSettings(c *gin.Context) {
	var req settingsRequest
	if err := bind(c, &req); err != nil {
		that.fail(c, err)
		return
	}

	var patch entity.SettingsPatch
	if req.Mode != nil {
		mode := entity.Mode(*req.Mode)
		patch.Mode = &mode
	}
	if req.Difficulty != nil {
		difficulty := entity.Difficulty(*req.Difficulty)
		patch.Difficulty = &difficulty
	}
	if req.Symbol != nil {
		mark := entity.Mark(*req.Symbol)
		patch.HumanMark = &mark
	}

	session, err := that.manager.UpdateSettings(c.Request.Context(), c.Param("id"), patch)
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) resetScores(c *gin.Context) {
	session, err := that.manager.ResetScores(c.Request.Context(), c.Param("id"))
	if err != nil {
		that.fail(c, err)
		return
	}

	that.respond(c, session)
}

func (that *Server) endSession(c *gin.Context) {
	if err := that.manager.EndSession(c.Request.Context(), c.Param("id")); err != nil {
		that.fail(c, err)
		return
	}

	SuccessResponse(c, gin.H{"message": "session ended"})
}

func (that *Server) respond(c *gin.Context, session *entity.Session) {
	SuccessResponse(c, NewSessionView(session, that.now()))
}

func (that *Server) fail(c *gin.Context, err error) {
	code := statusCode(err)
	if code == http.StatusInternalServerError {
		that.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "error", err)
		ErrorResponse(c, code, http.StatusText(code))

		return
	}

	ErrorResponse(c, code, err.Error())
}

func bind(c *gin.Context, req any) error {
	if err := c.ShouldBindJSON(req); err != nil {
		return errors.Join(errBadRequest, err)
	}

	if err := validate.Struct(req); err != nil {
		return validationError(err)
	}

	return nil
}

// bindOptional - like bind, but an empty body leaves req zeroed.
func bindOptional(c *gin.Context, req any) error {
	err := c.ShouldBindJSON(req)
	if err != nil && !errors.Is(err, io.EOF) {
		return errors.Join(errBadRequest, err)
	}

	if err = validate.Struct(req); err != nil {
		return validationError(err)
	}

	return nil
}
