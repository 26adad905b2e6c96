// File path: cmd/inkspace/main.go
package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"

	"github.com/nicodishanthj/inkspace/internal/api"
	"github.com/nicodishanthj/inkspace/internal/assets"
	"github.com/nicodishanthj/inkspace/internal/common"
	"github.com/nicodishanthj/inkspace/internal/llm"
	"github.com/nicodishanthj/inkspace/internal/sqlite"
)

func main() {
	logger := common.Logger()

	if err := godotenv.Load(); err != nil {
		logger.Warn("inkspace: .env file not loaded", "error", err)
	} else {
		logger.Info("inkspace: environment loaded from .env")
	}

	addr := flag.String("addr", ":8080", "listen address")
	dbPath := flag.String("db", defaultDBPath(), "path to the SQLite database")
	uploadDir := flag.String("uploads", strings.TrimSpace(os.Getenv("INKSPACE_UPLOAD_DIR")), "directory for uploaded file payloads")
	flag.Parse()

	logger.Info("inkspace: startup initiated", "addr", *addr, "db", *dbPath)

	cfg, err := sqlite.LoadConfig()
	if err != nil {
		logger.Error("inkspace: sqlite config load failed", "error", err)
		fmt.Println("sqlite config error:", err)
		os.Exit(1)
	}
	if trimmed := strings.TrimSpace(*dbPath); trimmed != "" {
		cfg.Path = trimmed
	}
	store, err := sqlite.OpenWithConfig(cfg)
	if err != nil {
		logger.Error("inkspace: store open failed", "error", err)
		fmt.Println("store error:", err)
		os.Exit(1)
	}
	defer store.Close()

	blobs, err := assets.NewStore(*uploadDir)
	if err != nil {
		logger.Error("inkspace: upload store init failed", "error", err)
		fmt.Println("upload store error:", err)
		os.Exit(1)
	}

	provider := llm.NewProvider()

	server, err := api.NewServer(store, blobs, provider)
	if err != nil {
		logger.Error("inkspace: server init failed", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}

	logger.Info("inkspace: listening", "addr", *addr)
	fmt.Printf("inkspace listening on %s\n", *addr)
	if err := http.ListenAndServe(*addr, server); err != nil {
		logger.Error("inkspace: server stopped", "error", err)
		fmt.Println("server error:", err)
		os.Exit(1)
	}
}

func defaultDBPath() string {
	if env := strings.TrimSpace(os.Getenv("SQLITE_PATH")); env != "" {
		return env
	}
	return filepath.Join("data", "inkspace.db")
}
