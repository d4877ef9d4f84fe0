// Package server exposes the lifecycle engine over a JSON HTTP API.
package server

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/kapu/chess-wager-go/internal/board"
	"github.com/kapu/chess-wager-go/internal/escrow"
	"github.com/kapu/chess-wager-go/internal/obslog"
	"github.com/kapu/chess-wager-go/pkg/wagerdto"
)

type Server struct {
	engine   *escrow.Engine
	renderer board.Renderer
}

func New(engine *escrow.Engine) *Server {
	return &Server{engine: engine, renderer: board.NewRenderer()}
}

// Handler is the fasthttp entry point. Routes:
//
//	POST /v1/games                  create
//	GET  /v1/games                  list
//	GET  /v1/games/{id}             get
//	POST /v1/games/{id}/join        join
//	POST /v1/games/{id}/move        move
//	POST /v1/games/{id}/resign      resign
//	GET  /v1/games/{id}/board.png   position snapshot
func (s *Server) Handler(ctx *fasthttp.RequestCtx) {
	reqID := uuid.NewString()
	ctx.Response.Header.Set("X-Request-Id", reqID)

	path := string(ctx.Path())
	method := string(ctx.Method())

	obslog.L().Debug("http_request",
		zap.String("request_id", reqID),
		zap.String("method", method),
		zap.String("path", path),
	)

	if path == "/v1/games" {
		switch method {
		case fasthttp.MethodPost:
			s.handleCreate(ctx)
		case fasthttp.MethodGet:
			s.handleList(ctx)
		default:
			writeError(ctx, fasthttp.StatusMethodNotAllowed, wagerdto.CodeBadRequest, "method not allowed")
		}
		return
	}

	rest, ok := strings.CutPrefix(path, "/v1/games/")
	if !ok {
		writeError(ctx, fasthttp.StatusNotFound, wagerdto.CodeBadRequest, "unknown route")
		return
	}

	idPart, action, _ := strings.Cut(rest, "/")
	gameID, err := strconv.ParseUint(idPart, 10, 64)
	if err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "invalid game id")
		return
	}

	switch {
	case action == "" && method == fasthttp.MethodGet:
		s.handleGet(ctx, gameID)
	case action == "join" && method == fasthttp.MethodPost:
		s.handleJoin(ctx, gameID)
	case action == "move" && method == fasthttp.MethodPost:
		s.handleMove(ctx, gameID)
	case action == "resign" && method == fasthttp.MethodPost:
		s.handleResign(ctx, gameID)
	case action == "board.png" && method == fasthttp.MethodGet:
		s.handleBoard(ctx, gameID)
	default:
		writeError(ctx, fasthttp.StatusNotFound, wagerdto.CodeBadRequest, "unknown route")
	}
}

func (s *Server) handleCreate(ctx *fasthttp.RequestCtx) {
	var req wagerdto.CreateGameRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "player is required")
		return
	}

	id, err := s.engine.Create(ctx, req.Player, coinsFromPayload(req.Funds))
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusCreated, wagerdto.CreateGameResponse{GameID: id})
}

func (s *Server) handleJoin(ctx *fasthttp.RequestCtx, gameID uint64) {
	var req wagerdto.JoinGameRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "player is required")
		return
	}

	g, err := s.engine.Join(ctx, req.Player, coinsFromPayload(req.Funds), gameID)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, wagerdto.CommandResponse{Game: gameToDTO(g)})
}

func (s *Server) handleMove(ctx *fasthttp.RequestCtx, gameID uint64) {
	var req wagerdto.MakeMoveRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "player is required")
		return
	}

	g, transfers, err := s.engine.Move(ctx, req.Player, gameID, req.From, req.To, req.Promotion)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, wagerdto.CommandResponse{
		Game:      gameToDTO(g),
		Transfers: transfersToDTO(transfers),
	})
}

func (s *Server) handleResign(ctx *fasthttp.RequestCtx, gameID uint64) {
	var req wagerdto.ResignRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "malformed request body")
		return
	}
	if strings.TrimSpace(req.Player) == "" {
		writeError(ctx, fasthttp.StatusBadRequest, wagerdto.CodeBadRequest, "player is required")
		return
	}

	g, transfers, err := s.engine.Resign(ctx, req.Player, gameID)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, wagerdto.CommandResponse{
		Game:      gameToDTO(g),
		Transfers: transfersToDTO(transfers),
	})
}

func (s *Server) handleGet(ctx *fasthttp.RequestCtx, gameID uint64) {
	g, err := s.engine.Get(ctx, gameID)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, gameToDTO(g))
}

func (s *Server) handleList(ctx *fasthttp.RequestCtx) {
	games, err := s.engine.List(ctx)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	out := wagerdto.ListGamesResponse{Games: make([]wagerdto.GameState, 0, len(games))}
	for _, g := range games {
		out.Games = append(out.Games, gameToDTO(g))
	}
	writeJSON(ctx, fasthttp.StatusOK, out)
}

func (s *Server) handleBoard(ctx *fasthttp.RequestCtx, gameID uint64) {
	g, err := s.engine.Get(ctx, gameID)
	if err != nil {
		writeEngineError(ctx, err)
		return
	}
	png, err := s.renderer.RenderPNG(ctx, g.FEN)
	if err != nil {
		obslog.L().Error("board_render_error", zap.Uint64("game_id", gameID), zap.Error(err))
		writeError(ctx, fasthttp.StatusInternalServerError, wagerdto.CodeInternal, "board render failed")
		return
	}
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetContentType("image/png")
	ctx.SetBody(png)
}

func gameToDTO(g *escrow.Game) wagerdto.GameState {
	return wagerdto.GameState{
		ID:        g.ID,
		FEN:       g.FEN,
		White:     g.White,
		Black:     g.Black,
		Turn:      g.Turn,
		Status:    int(g.Status),
		StatusTag: g.Status.String(),
		Wager:     wagerdto.CoinPayload{Denom: g.Wager.Denom, Amount: g.Wager.Amount},
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

func transfersToDTO(transfers []escrow.Transfer) []wagerdto.TransferPayload {
	if len(transfers) == 0 {
		return nil
	}
	out := make([]wagerdto.TransferPayload, 0, len(transfers))
	for _, t := range transfers {
		out = append(out, wagerdto.TransferPayload{
			To:     t.To,
			Amount: wagerdto.CoinPayload{Denom: t.Amount.Denom, Amount: t.Amount.Amount},
		})
	}
	return out
}

func coinsFromPayload(coins []wagerdto.CoinPayload) []escrow.Coin {
	if len(coins) == 0 {
		return nil
	}
	out := make([]escrow.Coin, 0, len(coins))
	for _, c := range coins {
		out = append(out, escrow.Coin{Denom: c.Denom, Amount: c.Amount})
	}
	return out
}

func writeEngineError(ctx *fasthttp.RequestCtx, err error) {
	code := escrow.ErrorCode(err)
	status := statusForCode(code)
	if code == "" {
		obslog.L().Error("command_error", zap.Error(err))
		code = wagerdto.CodeInternal
	}
	writeError(ctx, status, code, err.Error())
}

func statusForCode(code string) int {
	switch code {
	case wagerdto.CodeGameNotFound:
		return fasthttp.StatusNotFound
	case wagerdto.CodeInvalidFunds, wagerdto.CodeWagerMismatch, wagerdto.CodeIllegalMove:
		return fasthttp.StatusBadRequest
	case wagerdto.CodeWrongTurn, wagerdto.CodeNotAPlayer, wagerdto.CodeGameNotActive:
		return fasthttp.StatusConflict
	}
	return fasthttp.StatusInternalServerError
}

func writeError(ctx *fasthttp.RequestCtx, status int, code, message string) {
	writeJSON(ctx, status, wagerdto.ErrorResponse{
		Error: wagerdto.DomainError{Code: code, Message: message},
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		ctx.SetStatusCode(fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetStatusCode(status)
	ctx.SetContentType("application/json; charset=utf-8")
	ctx.SetBody(raw)
}
