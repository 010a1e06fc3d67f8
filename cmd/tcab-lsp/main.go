// Package main implements the tcab language server over stdio.
package main

import (
	"context"
	"io"
	"os"

	"go.lsp.dev/jsonrpc2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/dubya62/tcab/pkg/compiler"
	"github.com/dubya62/tcab/pkg/config"
	"github.com/dubya62/tcab/pkg/lsp"
)

var version = "0.1.0-alpha"

func main() {
	logger := newLogger(os.Getenv("TCAB_LSP_LOG"))
	defer logger.Sync()

	logger.Infof("starting tcab-lsp server")

	cfg, err := config.Load(nil)
	if err != nil {
		logger.Warnf("config load failed, using defaults: %v", err)
		cfg = config.DefaultConfig()
	}

	server := lsp.NewServer(lsp.ServerConfig{
		Logger:   logger,
		Compiler: compiler.New(cfg),
		Version:  version,
	})

	rwc := &stdinoutCloser{stdin: os.Stdin, stdout: os.Stdout}
	stream := jsonrpc2.NewStream(rwc)
	conn := jsonrpc2.NewConn(stream)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// The connection must be stored before the handler starts so that
	// diagnostics publishing never sees a nil connection.
	server.SetConn(conn, ctx)
	conn.Go(ctx, server.Handler())

	<-conn.Done()
	logger.Infof("server stopped")
}

// newLogger builds a stderr logger; stdout belongs to the protocol.
func newLogger(level string) *zap.SugaredLogger {
	lvl := zapcore.InfoLevel
	if parsed, err := zapcore.ParseLevel(level); err == nil && level != "" {
		lvl = parsed
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop().Sugar()
	}
	return logger.Sugar()
}

// stdinoutCloser wraps os.Stdin and os.Stdout as one ReadWriteCloser.
type stdinoutCloser struct {
	stdin  *os.File
	stdout *os.File
}

func (s *stdinoutCloser) Read(p []byte) (int, error)  { return s.stdin.Read(p) }
func (s *stdinoutCloser) Write(p []byte) (int, error) { return s.stdout.Write(p) }
func (s *stdinoutCloser) Close() error                { return nil }

var _ io.ReadWriteCloser = (*stdinoutCloser)(nil)
