package conn

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/tobsdb/pcddb/internal/auth"
	"github.com/tobsdb/pcddb/internal/database"
	"github.com/tobsdb/pcddb/pkg"
)

type ServerSettings struct {
	Port int
	// empty means connections don't have to authenticate
	Users []*auth.PcdUser
}

// Server exposes the diagnostic views of a resolved database.
type Server struct {
	db       *database.Manager
	settings ServerSettings
}

func NewServer(m *database.Manager, settings ServerSettings) *Server {
	if !m.IsResolved() {
		pkg.WarnLog("serving a database that is not resolved; pcd types and token numbers are empty")
	}
	return &Server{db: m, settings: settings}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("/", s.HandleConnection)
	return mux
}

// Listen serves until the process is interrupted.
func (s *Server) Listen() {
	exit := make(chan os.Signal, 2)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", s.settings.Port),
		Handler: s.Handler(),
	}

	go func() {
		err := srv.ListenAndServe()
		if err != http.ErrServerClosed {
			pkg.FatalLog(err)
		}
	}()

	pkg.InfoLog("PCD database listening on port", s.settings.Port)
	<-exit
	pkg.DebugLog("Shutting down...")
	srv.Shutdown(context.Background())
}
