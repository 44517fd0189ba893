package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MrEthical07/jwtgen"
	"github.com/MrEthical07/jwtgen/signer"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
	ucli "github.com/urfave/cli/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	// DefaultHeader is the header offered when none is given.
	DefaultHeader = `{"typ": "JWT"}`
	// DefaultExpiry is the expiry in minutes offered when none is given.
	DefaultExpiry = "60"
	// DefaultPayload is the sample payload offered when none is given.
	DefaultPayload = `{
  "user_id": 123,
  "username": "testuser",
  "roles": ["admin", "user"]
}`
)

// Options wires the command to its environment.
type Options struct {
	Fs     afero.Fs
	Stdout io.Writer
	Stderr io.Writer
	Clock  func() time.Time
}

func (o Options) withDefaults() Options {
	if o.Fs == nil {
		o.Fs = afero.NewOsFs()
	}
	if o.Stdout == nil {
		o.Stdout = os.Stdout
	}
	if o.Stderr == nil {
		o.Stderr = os.Stderr
	}
	if o.Clock == nil {
		o.Clock = time.Now
	}
	return o
}

// Run executes the command with args (args[0] is the program name) and returns
// the process exit code. Failures are reported as "Error: <message>" on
// Stderr; nothing is written to Stdout in that case.
func Run(ctx context.Context, args []string, opts Options) int {
	opts = opts.withDefaults()

	if err := NewApp(opts).RunContext(ctx, args); err != nil {
		fmt.Fprintf(opts.Stderr, "Error: %s\n", err)
		return 1
	}
	return 0
}

// NewApp builds the urfave/cli application.
func NewApp(opts Options) *ucli.App {
	opts = opts.withDefaults()

	return &ucli.App{
		Name:      "jwtgen",
		Usage:     "generate a signed JSON Web Token",
		UsageText: "jwtgen --secret <key> [--alg HS256] [--expiry 60] [--payload <json>] [--header <json>]",
		Writer:    opts.Stdout,
		ErrWriter: opts.Stderr,
		// Errors are printed by Run.
		ExitErrHandler:  func(*ucli.Context, error) {},
		HideHelpCommand: true,
		Flags:           flags(),
		Action: func(c *ucli.Context) error {
			return generate(c, opts)
		},
	}
}

func flags() []ucli.Flag {
	return []ucli.Flag{
		&ucli.StringFlag{Name: "secret", Aliases: []string{"s"}, Usage: "HMAC secret or PEM private key", EnvVars: []string{"JWTGEN_SECRET"}},
		&ucli.StringFlag{Name: "secret-file", Usage: "read the secret or PEM key from `FILE`", EnvVars: []string{"JWTGEN_SECRET_FILE"}},
		&ucli.StringFlag{Name: "alg", Aliases: []string{"a"}, Value: string(jwtgen.HS256), Usage: "signing algorithm (HS256, HS384, HS512, RS256, ES256)", EnvVars: []string{"JWTGEN_ALG"}},
		&ucli.StringFlag{Name: "expiry", Aliases: []string{"e"}, Value: DefaultExpiry, Usage: "token lifetime in minutes", EnvVars: []string{"JWTGEN_EXPIRY"}},
		&ucli.StringFlag{Name: "payload", Aliases: []string{"p"}, Value: DefaultPayload, Usage: "payload JSON object", EnvVars: []string{"JWTGEN_PAYLOAD"}},
		&ucli.StringFlag{Name: "payload-file", Usage: "read the payload JSON from `FILE`", EnvVars: []string{"JWTGEN_PAYLOAD_FILE"}},
		&ucli.StringFlag{Name: "header", Value: DefaultHeader, Usage: "custom header JSON object", EnvVars: []string{"JWTGEN_HEADER"}},
		&ucli.StringFlag{Name: "header-file", Usage: "read the header JSON from `FILE`", EnvVars: []string{"JWTGEN_HEADER_FILE"}},
		&ucli.StringFlag{Name: "backend", Value: signer.BackendJWT, Usage: "signing backend (jwt, jwx)", EnvVars: []string{"JWTGEN_BACKEND"}},
		&ucli.BoolFlag{Name: "strict-header", Usage: "reject a header \"alg\" that differs from --alg", EnvVars: []string{"JWTGEN_STRICT_HEADER"}},
		&ucli.StringFlag{Name: "issuer", Value: jwtgen.DefaultIssuer, Usage: "\"iss\" used when the payload has none", EnvVars: []string{"JWTGEN_ISSUER"}},
		&ucli.StringFlag{Name: "subject-placeholder", Value: jwtgen.DefaultSubject, Usage: "\"sub\" used when the payload has no sub, username or user_id", EnvVars: []string{"JWTGEN_SUBJECT_PLACEHOLDER"}},
		&ucli.BoolFlag{Name: "json", Usage: "print the result as a JSON object", EnvVars: []string{"JWTGEN_JSON"}},
		&ucli.BoolFlag{Name: "verbose", Aliases: []string{"v"}, Usage: "log issuance details to stderr", EnvVars: []string{"JWTGEN_VERBOSE"}},
		&ucli.StringFlag{Name: "redis-addr", Usage: "throttle issuance per subject through the Redis server at `ADDR`", EnvVars: []string{"JWTGEN_REDIS_ADDR"}},
		&ucli.IntFlag{Name: "rate-limit", Value: 60, Usage: "tokens per subject per window when --redis-addr is set", EnvVars: []string{"JWTGEN_RATE_LIMIT"}},
		&ucli.DurationFlag{Name: "rate-window", Value: time.Minute, Usage: "throttle window when --redis-addr is set", EnvVars: []string{"JWTGEN_RATE_WINDOW"}},
	}
}

func generate(c *ucli.Context, opts Options) error {
	req, err := readRequest(c, opts.Fs)
	if err != nil {
		return err
	}

	logger := newLogger(c.Bool("verbose"), opts.Stderr)
	defer func() { _ = logger.Sync() }()

	backend, err := signer.New(c.String("backend"))
	if err != nil {
		return err
	}

	cfg := jwtgen.DefaultConfig()
	cfg.Claims.DefaultIssuer = c.String("issuer")
	cfg.Claims.DefaultSubject = c.String("subject-placeholder")
	cfg.Metrics.Enabled = false
	if c.Bool("strict-header") {
		cfg.Header.Policy = jwtgen.HeaderPolicyStrict
	}

	b := jwtgen.New().
		WithSigner(backend).
		WithLogger(logger).
		WithClock(opts.Clock)

	if c.Bool("verbose") {
		cfg.Audit.Enabled = true
		cfg.Audit.DropIfFull = false
		b.WithAuditSink(jwtgen.NewZapSink(logger))
	}

	if addr := strings.TrimSpace(c.String("redis-addr")); addr != "" {
		cfg.RateLimit.Enabled = true
		cfg.RateLimit.MaxIssues = c.Int("rate-limit")
		cfg.RateLimit.Window = c.Duration("rate-window")

		client := redis.NewClient(&redis.Options{Addr: addr})
		defer client.Close()
		b.WithRedis(client)
	}

	issuer, err := b.WithConfig(cfg).Build()
	if err != nil {
		return fmt.Errorf("configuration: %w", err)
	}
	defer issuer.Close()

	tok, err := issuer.IssueNow(c.Context, req)
	if err != nil {
		return err
	}

	if c.Bool("json") {
		return writeJSON(opts.Stdout, tok)
	}
	fmt.Fprintln(opts.Stdout, tok.Value)
	fmt.Fprintln(opts.Stdout, tok.StatusMessage())
	return nil
}

func readRequest(c *ucli.Context, fs afero.Fs) (jwtgen.TokenRequest, error) {
	if c.IsSet("secret") && c.IsSet("secret-file") {
		return jwtgen.TokenRequest{}, errors.New("--secret and --secret-file are mutually exclusive")
	}

	secret, err := textOrFile(fs, c.String("secret"), c.String("secret-file"))
	if err != nil {
		return jwtgen.TokenRequest{}, err
	}
	if c.String("secret-file") != "" {
		secret = strings.TrimRight(secret, "\r\n")
	}
	payload, err := textOrFile(fs, c.String("payload"), c.String("payload-file"))
	if err != nil {
		return jwtgen.TokenRequest{}, err
	}
	header, err := textOrFile(fs, c.String("header"), c.String("header-file"))
	if err != nil {
		return jwtgen.TokenRequest{}, err
	}

	return jwtgen.TokenRequest{
		Secret:        secret,
		Algorithm:     jwtgen.Algorithm(strings.ToUpper(strings.TrimSpace(c.String("alg")))),
		ExpiryMinutes: c.String("expiry"),
		Payload:       payload,
		Header:        header,
	}, nil
}

func textOrFile(fs afero.Fs, text, path string) (string, error) {
	if path == "" {
		return text, nil
	}
	b, err := afero.ReadFile(fs, path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(b), nil
}

func newLogger(verbose bool, w io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), zap.DebugLevel)
	return zap.New(core).Named("jwtgen")
}

type jsonResult struct {
	Token     string `json:"token"`
	Algorithm string `json:"algorithm"`
	TokenID   string `json:"jti"`
	IssuedAt  string `json:"issued_at"`
	ExpiresAt string `json:"expires_at"`
}

func writeJSON(w io.Writer, tok *jwtgen.Token) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(jsonResult{
		Token:     tok.Value,
		Algorithm: string(tok.Algorithm),
		TokenID:   tok.ID,
		IssuedAt:  tok.IssuedAt.UTC().Format(time.RFC3339),
		ExpiresAt: tok.ExpiresAt.UTC().Format(time.RFC3339),
	})
}
