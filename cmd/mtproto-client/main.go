// Command mtproto-client is a thin staged-bootstrap driver for the
// handshake package: parse flags, dial, pick a transport variant, run
// the DH exchange, print the result. No application-message layer, no
// SOCKS frontend, no retry policy beyond handshake.Run's own (§1
// Non-goals).
package main

import (
	"context"
	"crypto/x509"
	"encoding/hex"
	"encoding/pem"
	"flag"
	"fmt"
	"log/slog"
	"math/big"
	"net"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cvsouth/mtproto-go/handshake"
	"github.com/cvsouth/mtproto-go/mtcrypto"
	"github.com/cvsouth/mtproto-go/tl/schema"
	"github.com/cvsouth/mtproto-go/transport"
)

// Version is set at build time via ldflags.
var Version = "dev"

func main() {
	addr := flag.String("addr", "", "datacenter address, host:port")
	network := flag.String("network", "tcp", "tcp or udp")
	variant := flag.String("variant", "intermediate", "abridged, intermediate, padded, or full")
	keysPath := flag.String("keys", "", "path to a PEM file of RSA PUBLIC KEY (PKCS1) blocks, one per server key")
	dc := flag.Int("dc", 2, "datacenter id carried in p_q_inner_data")
	expiresIn := flag.Int("expires-in", 0, "non-zero selects the temporary-key flow, seconds until expiry")
	logPath := flag.String("log", "mtproto-debug.log", "path to the JSON debug log")
	timeout := flag.Duration("timeout", 30*time.Second, "handshake timeout")
	flag.Parse()

	logger, logFile := setupLogging(*logPath)
	defer func() { _ = logFile.Close() }()

	fmt.Printf("=== mtproto-client %s ===\n", Version)
	fmt.Println()

	if *addr == "" {
		fmt.Fprintln(os.Stderr, "missing -addr")
		os.Exit(1)
	}
	if *keysPath == "" {
		fmt.Fprintln(os.Stderr, "missing -keys")
		os.Exit(1)
	}

	keys := loadKnownKeys(*keysPath, logger)
	v := selectVariant(*variant)

	conn := dial(*network, *addr, logger)
	defer func() { _ = conn.Close() }()

	result := runHandshake(conn, v, keys, int32(*dc), int32(*expiresIn), *timeout, logger)
	printResult(result)
}

func setupLogging(path string) (*slog.Logger, *os.File) {
	logFile, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log file: %v\n", err)
		os.Exit(1)
	}
	fileHandler := slog.NewJSONHandler(logFile, &slog.HandlerOptions{Level: slog.LevelDebug})
	stdoutHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	logger := slog.New(&multiHandler{handlers: []slog.Handler{fileHandler, stdoutHandler}})
	return logger, logFile
}

// loadKnownKeys reads PEM-encoded RSA PUBLIC KEY (PKCS1) blocks and
// indexes each by its MTProto fingerprint (§4.7 "Select a known
// server RSA key by fingerprint").
func loadKnownKeys(path string, logger *slog.Logger) handshake.KnownKeys {
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("  Failed to read keys file: %v\n", err)
		os.Exit(1)
	}

	keys := make(handshake.KnownKeys)
	rest := raw
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}
		pub, err := x509.ParsePKCS1PublicKey(block.Bytes)
		if err != nil {
			logger.Warn("skipping unparseable PEM block", "error", err)
			continue
		}

		bareKey := &schema.RSAPublicKey{
			N: pub.N.Bytes(),
			E: big.NewInt(int64(pub.E)).Bytes(),
		}
		fp, err := bareKey.Fingerprint()
		if err != nil {
			logger.Warn("failed to compute fingerprint", "error", err)
			continue
		}
		keys[fp] = &mtcrypto.RSAPublicKey{N: pub.N, E: big.NewInt(int64(pub.E))}
		fmt.Printf("  Loaded RSA key, fingerprint 0x%016x\n", uint64(fp))
	}

	if len(keys) == 0 {
		fmt.Println("  No usable RSA keys found")
		os.Exit(1)
	}
	return keys
}

func selectVariant(name string) transport.Variant {
	switch name {
	case "abridged":
		return transport.Abridged{}
	case "intermediate":
		return transport.Intermediate{}
	case "padded":
		return transport.PaddedIntermediate{}
	case "full":
		return &transport.Full{}
	default:
		fmt.Fprintf(os.Stderr, "unknown -variant %q (want abridged, intermediate, padded, full)\n", name)
		os.Exit(1)
		return nil
	}
}

func dial(network, addr string, logger *slog.Logger) net.Conn {
	fmt.Printf("Dialing %s %s...\n", network, addr)
	conn, err := net.DialTimeout(network, addr, 10*time.Second)
	if err != nil {
		fmt.Printf("  Failed: %v\n", err)
		os.Exit(1)
	}
	logger.Info("connected", "network", network, "addr", addr)
	return conn
}

func runHandshake(conn net.Conn, v transport.Variant, keys handshake.KnownKeys, dc, expiresIn int32, timeout time.Duration, logger *slog.Logger) *handshake.Result {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		fmt.Println("\nAborting...")
		cancel()
	}()

	tconn := transport.NewConn(conn, v)
	fmt.Println("Running auth_key handshake...")
	result, err := handshake.Run(ctx, tconn, keys, handshake.Options{
		ExpiresIn: expiresIn,
		DC:        dc,
		Logger:    logger,
	})
	if err != nil {
		fmt.Printf("  Handshake failed: %v\n", err)
		os.Exit(1)
	}
	return result
}

func printResult(r *handshake.Result) {
	fmt.Println("\nHandshake complete.")
	fmt.Printf("  auth_key:    %s\n", hex.EncodeToString(r.AuthKey))
	fmt.Printf("  server_salt: 0x%016x\n", r.ServerSalt)
	fmt.Printf("  auth_key_id: 0x%016x\n", r.AuthKeyID)
}

// multiHandler fans out slog records to multiple handlers.
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	for _, h := range m.handlers {
		if h.Enabled(ctx, r.Level) {
			if err := h.Handle(ctx, r); err != nil {
				return err
			}
		}
	}
	return nil
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: hs}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	hs := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		hs[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: hs}
}
