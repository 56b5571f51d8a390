package peer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

//ServeHTTP writes the peer statistics as JSON
func (p *Peer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(p.Status()); err != nil {
		p.log.Error("Unable to write status: ", err)
	}
}

//ServeStatus serves the peer statistics over HTTP on addr until ctx is done
func (p *Peer) ServeStatus(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: p}
	go func() {
		<-ctx.Done()
		_ = srv.Close()
	}()

	p.log.Info("Serving status on ", addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("unable to serve status on %s: %w", addr, err)
	}
	return nil
}
