package conn

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/websocket"

	"github.com/tobsdb/pcddb/internal/auth"
	"github.com/tobsdb/pcddb/pkg"
)

type WsRequest struct {
	Action RequestAction `json:"action"`
	ReqId  int           `json:"__pcd_client_req_id__"` // used in pcd clients
}

var Upgrader = websocket.Upgrader{
	WriteBufferSize: 1024 * 10,
	ReadBufferSize:  1024 * 10,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

type ConnRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func tryConnect(s *Server, ctx *ConnCtx, buf []byte) error {
	var r ConnRequest
	if err := json.Unmarshal(buf, &r); err != nil {
		ctx.WriteResponse(NewErrorResponse(http.StatusBadRequest, err.Error()))
		return err
	}

	user, err := auth.Authenticate(s.settings.Users, r.Username, r.Password)
	if err != nil {
		return ctx.WriteResponse(NewErrorResponse(http.StatusUnauthorized, err.Error()))
	}

	ctx.User = user
	ctx.SetAuthed()
	pkg.InfoLog("Authenticated", user.Name)
	return ctx.WriteString("connected")
}

func (s *Server) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := Upgrader.Upgrade(w, r, nil)
	if err != nil {
		pkg.ErrorLog(err)
		return
	}
	defer conn.Close()
	pkg.InfoLog("New connection established from", conn.RemoteAddr())
	defer pkg.InfoLog("Connection closed from", conn.RemoteAddr())

	ctx := NewConnCtx(conn)
	if len(s.settings.Users) == 0 {
		ctx.SetAuthed()
	}

	for {
		buf, err := ctx.Read()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				pkg.ErrorLog("unexpected close", err)
			} else {
				pkg.DebugLog("connection closed", err)
			}
			return
		}

		if !ctx.isAuthed {
			if ctx.attempts == maxConnAttempts {
				pkg.ErrorLog("max connection attempts reached")
				return
			}

			err = tryConnect(s, ctx, buf)
			ctx.attempts += 1
			if err != nil {
				pkg.ErrorLog("conn attempt error", err)
				return
			}
			continue
		}

		var req WsRequest
		if err := json.Unmarshal(buf, &req); err != nil {
			pkg.ErrorLog("parsing request", err)
			continue
		}

		res := ActionHandler(s.db, req.Action, buf)
		res.ReqId = req.ReqId

		if err := ctx.WriteResponse(res); err != nil {
			pkg.ErrorLog("writing response", err)
			return
		}
	}
}
