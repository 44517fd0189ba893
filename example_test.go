package jwtgen_test

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/jwtgen"
)

func ExampleIssuer_Issue() {
	issuer, err := jwtgen.New().Build()
	if err != nil {
		panic(err)
	}
	defer issuer.Close()

	now := time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)
	tok, err := issuer.Issue(context.Background(), jwtgen.TokenRequest{
		Secret:        "my-secret",
		Algorithm:     jwtgen.HS256,
		ExpiryMinutes: "90",
		Payload:       `{"user_id": 123, "username": "testuser"}`,
		Header:        `{"typ": "JWT"}`,
	}, now)
	if err != nil {
		panic(err)
	}

	fmt.Println(tok.StatusMessage())
	fmt.Println(tok.Claims["sub"], tok.Claims["iss"])
	fmt.Println(tok.Claims["exp"].(int64) - tok.Claims["iat"].(int64))
	// Output:
	// JWT generated successfully (HS256). Expires: 2026-10-15 13:30:00 UTC
	// testuser ManusJWTGenerator
	// 5400
}

func ExampleIssuer_Issue_rejected() {
	issuer, err := jwtgen.New().Build()
	if err != nil {
		panic(err)
	}
	defer issuer.Close()

	_, err = issuer.IssueNow(context.Background(), jwtgen.TokenRequest{
		Secret:        "my-secret",
		Algorithm:     jwtgen.HS256,
		ExpiryMinutes: "sixty",
		Payload:       `{}`,
		Header:        `{}`,
	})

	fmt.Println(errors.Is(err, jwtgen.ErrInvalidExpiry), jwtgen.KindOf(err))
	// Output:
	// true invalid_expiry
}
