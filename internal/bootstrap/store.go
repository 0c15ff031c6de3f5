package bootstrap

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/squadline/squadline-backend/config"
	"github.com/squadline/squadline-backend/internal/auth"
	"github.com/squadline/squadline-backend/internal/docstore"
	"github.com/squadline/squadline-backend/internal/metrics"
)

// Backends are the external clients the API runs on.
type Backends struct {
	Store    docstore.Store
	Firebase *auth.FirebaseClients
}

// OpenBackends initializes Firebase (unless DEV_AUTH with the memory
// driver leaves nothing to talk to) and the document store. Every store
// call is counted by recorder.
func OpenBackends(ctx context.Context, cfg *config.Config, recorder *metrics.Recorder) (*Backends, error) {
	logger := zerolog.Ctx(ctx)
	useFirestore := cfg.Store.Driver == config.StoreFirestore
	b := &Backends{}

	if useFirestore || !cfg.Server.DevAuth {
		clients, err := auth.InitializeFirebase(ctx, &cfg.Firebase, useFirestore)
		if err != nil {
			return nil, err
		}
		b.Firebase = clients
		logger.Info().Str("project_id", cfg.Firebase.ProjectID).Msg("firebase initialized")
	}

	switch cfg.Store.Driver {
	case config.StoreFirestore:
		b.Store = docstore.NewFirestore(b.Firebase.Firestore)
	case config.StoreMemory:
		logger.Warn().Msg("using in-memory document store, data is lost on restart")
		b.Store = docstore.NewMemory()
	default:
		_ = b.Close()
		return nil, fmt.Errorf("unknown STORE_DRIVER %q", cfg.Store.Driver)
	}

	b.Store = docstore.NewInstrumented(b.Store, recorder)
	return b, nil
}

func (b *Backends) Close() error {
	return b.Firebase.Close()
}
