/*
 * Copyright (C) 2026 Nuts community
 *
 * This program is free software: you can redistribute it and/or modify
 * it under the terms of the GNU General Public License as published by
 * the Free Software Foundation, either version 3 of the License, or
 * (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU General Public License
 * along with this program.  If not, see <https://www.gnu.org/licenses/>.
 *
 */

package orchestrator

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/lestrrat-go/jwx/v2/jwa"
	"github.com/lestrrat-go/jwx/v2/jwk"
	"github.com/lestrrat-go/jwx/v2/jws"
	"github.com/lestrrat-go/jwx/v2/jwt"
	"github.com/nuts-foundation/irma-broker/irma"
	"github.com/nuts-foundation/irma-broker/storage"
	testhttp "github.com/nuts-foundation/irma-broker/test/http"
	"github.com/nuts-foundation/irma-broker/token"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// twoPow300 is 2^300, which can't be represented exactly by a float64.
const twoPow300 = "2037035976334486086268445688409378161051468393665936250636140449354381299763336706183397376"

const sessionID = "session-token"
const relyingSessionID = "relying-session"

var brokerKey, _ = rsa.GenerateKey(rand.Reader, 2048)
var irmaServerKey, _ = rsa.GenerateKey(rand.Reader, 2048)

type testContext struct {
	orchestrator *Orchestrator
	router       *testhttp.Router
	server       *httptest.Server
	serverKey    jwk.Key
}

func newTestContext(t *testing.T) *testContext {
	return newTestContextWithDatabase(t, storage.NewInMemorySessionDatabase())
}

func newTestContextWithDatabase(t *testing.T, database storage.SessionDatabase) *testContext {
	t.Cleanup(database.Close)
	router := &testhttp.Router{}
	server := httptest.NewServer(router)
	t.Cleanup(server.Close)
	signingKey, err := jwk.FromRaw(brokerKey)
	require.NoError(t, err)
	serverKey, err := jwk.FromRaw(irmaServerKey)
	require.NoError(t, err)
	codec, err := token.NewCodec(signingKey, serverKey)
	require.NoError(t, err)
	config := DefaultConfig()
	config.ServerURL = server.URL
	config.Poll.Interval = 10 * time.Millisecond
	config.Poll.Timeout = 5 * time.Second
	client := irma.NewHTTPClient(server.URL, http.DefaultClient, nil)
	orchestrator, err := newOrchestrator(config, client, codec, database, prometheus.NewRegistry())
	require.NoError(t, err)
	return &testContext{
		orchestrator: orchestrator,
		router:       router,
		server:       server,
		serverKey:    serverKey,
	}
}

// remoteStatus makes the IRMA server report the given status for the session.
func (c *testContext) remoteStatus(endpoint string, status string) *testhttp.Handler {
	handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: `"` + status + `"`}
	c.router.Handle(http.MethodGet, endpoint+"/"+sessionID+"/status", handler)
	return handler
}

// remoteResult makes the IRMA server return the given token as result of the session.
func (c *testContext) remoteResult(endpoint string, resource string, signed string) *testhttp.Handler {
	handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: signed}
	c.router.Handle(http.MethodGet, endpoint+"/"+sessionID+"/"+resource, handler)
	return handler
}

func (c *testContext) storeSession(t *testing.T, record RemoteSession) {
	require.NoError(t, c.orchestrator.sessions.Put(context.Background(), record.ID, record))
}

func (c *testContext) storedSession(t *testing.T, id string) RemoteSession {
	var record RemoteSession
	require.NoError(t, c.orchestrator.sessions.Get(context.Background(), id, &record))
	return record
}

func (c *testContext) signResult(t *testing.T, claims map[string]interface{}) string {
	builder := jwt.NewBuilder().IssuedAt(time.Now())
	for name, value := range claims {
		builder = builder.Claim(name, value)
	}
	unsigned, err := builder.Build()
	require.NoError(t, err)
	signed, err := jwt.Sign(unsigned, jwt.WithKey(jwa.RS256, c.serverKey))
	require.NoError(t, err)
	return string(signed)
}

func (c *testContext) disclosureResult(t *testing.T, jti string, status string, attributes map[string]interface{}) string {
	return c.signResult(t, map[string]interface{}{
		"sub":        "disclosure_result",
		"jti":        jti,
		"status":     status,
		"attributes": attributes,
	})
}

// requestClaims verifies the session request posted to the IRMA server and returns the embedded request.
func requestClaims(t *testing.T, handler *testhttp.Handler, claim string) (jwt.Token, map[string]interface{}) {
	publicKey, err := jwk.FromRaw(brokerKey.Public())
	require.NoError(t, err)
	parsed, err := jwt.Parse(handler.RequestData, jwt.WithKey(jwa.RS256, publicKey))
	require.NoError(t, err)
	value, ok := parsed.Get(claim)
	require.True(t, ok, "claim %s not present", claim)
	data, _ := json.Marshal(value)
	var request map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &request))
	return parsed, request
}

func TestOrchestrator_Start(t *testing.T) {
	ctx := context.Background()
	sessionPointer := map[string]interface{}{"u": sessionID, "v": "2.0", "irmaqr": "disclosing"}

	t.Run("disclosure", func(t *testing.T) {
		c := newTestContext(t)
		handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: sessionPointer}
		c.router.Handle(http.MethodPost, "/api/v2/verification", handler)

		result, err := c.orchestrator.Start(ctx, Disclosure, SingleAttribute("irma-demo.MijnOverheid.address.city", "City"), StartOptions{CallbackData: relyingSessionID})

		require.NoError(t, err)
		assert.Equal(t, sessionID, result.RemoteSessionID)
		assert.Equal(t, c.server.URL+"/api/v2/verification/"+sessionID, result.QRContent["u"])
		assert.Equal(t, "disclosing", result.QRContent["irmaqr"])
		assert.Equal(t, "text/plain", handler.RequestHeaders.Get("Content-Type"))
		parsed, request := requestClaims(t, handler, "sprequest")
		assert.Equal(t, "diva", parsed.Issuer())
		assert.Equal(t, "verification_request", parsed.Subject())
		assert.Equal(t, relyingSessionID, request["data"])
		assert.Equal(t, float64(60), request["validity"])
		assert.Equal(t, float64(600), request["timeout"])
		assert.Equal(t, []interface{}{map[string]interface{}{
			"label":      "City",
			"attributes": []interface{}{"irma-demo.MijnOverheid.address.city"},
		}}, request["request"].(map[string]interface{})["content"])
		assert.Equal(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending, CallbackData: relyingSessionID}, c.storedSession(t, sessionID))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.orchestrator.metrics.started.WithLabelValues("DISCLOSURE")))
	})
	t.Run("signature", func(t *testing.T) {
		c := newTestContext(t)
		handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: sessionPointer}
		c.router.Handle(http.MethodPost, "/api/v2/signature", handler)

		result, err := c.orchestrator.Start(ctx, Signature, SingleAttribute("irma-demo.MijnOverheid.fullName.firstname", "Name"), StartOptions{Message: "I agree"})

		require.NoError(t, err)
		assert.Equal(t, c.server.URL+"/api/v2/signature/"+sessionID, result.QRContent["u"])
		parsed, request := requestClaims(t, handler, "absrequest")
		assert.Equal(t, "signature_request", parsed.Subject())
		assert.NotContains(t, request, "data")
		body := request["request"].(map[string]interface{})
		assert.Equal(t, "I agree", body["message"])
		assert.Equal(t, "STRING", body["messageType"])
		assert.Len(t, body["content"], 1)
	})
	t.Run("issuance", func(t *testing.T) {
		c := newTestContext(t)
		handler := &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: sessionPointer}
		c.router.Handle(http.MethodPost, "/api/v2/issue", handler)
		credentials := []Credential{{
			Credential: "irma-demo.MijnOverheid.root",
			Validity:   1609459200,
			Attributes: map[string]string{"BSN": "12345"},
		}}

		_, err := c.orchestrator.Start(ctx, Issuance, nil, StartOptions{Credentials: credentials})

		require.NoError(t, err)
		parsed, request := requestClaims(t, handler, "iprequest")
		assert.Equal(t, "issue_request", parsed.Subject())
		assert.Equal(t, float64(600), request["validity"])
		body := request["request"].(map[string]interface{})
		assert.Nil(t, body["disclose"])
		assert.Equal(t, []interface{}{map[string]interface{}{
			"credential": "irma-demo.MijnOverheid.root",
			"validity":   float64(1609459200),
			"attributes": map[string]interface{}{"BSN": "12345"},
		}}, body["credentials"])
		assert.Equal(t, Issuance, c.storedSession(t, sessionID).Kind)
	})
	t.Run("session pointer without session type", func(t *testing.T) {
		c := newTestContext(t)
		c.router.Handle(http.MethodPost, "/api/v2/signature", &testhttp.Handler{StatusCode: http.StatusOK, ResponseData: map[string]interface{}{"u": sessionID, "v": "2.0"}})

		result, err := c.orchestrator.Start(ctx, Signature, SingleAttribute("a.b.c.d", "D"), StartOptions{Message: "I agree"})

		require.NoError(t, err)
		assert.Equal(t, "signing", result.QRContent["irmaqr"])
		assert.Equal(t, "2.0", result.QRContent["v"])
	})
	t.Run("IRMA server returns an error", func(t *testing.T) {
		c := newTestContext(t)
		c.router.Handle(http.MethodPost, "/api/v2/verification", &testhttp.Handler{StatusCode: http.StatusUnauthorized, ResponseData: "invalid JWT"})

		result, err := c.orchestrator.Start(ctx, Disclosure, SingleAttribute("a.b.c.d", "D"), StartOptions{})

		assert.Nil(t, result)
		var startErr SessionStartError
		require.True(t, errors.As(err, &startErr))
		assert.Equal(t, Disclosure, startErr.Kind)
		assert.ErrorContains(t, err, "error starting IRMA DISCLOSURE session: server returned HTTP 401")
		assert.False(t, c.orchestrator.sessions.Exists(ctx, sessionID))
	})
	t.Run("IRMA server is unreachable", func(t *testing.T) {
		c := newTestContext(t)
		c.server.Close()

		_, err := c.orchestrator.Start(ctx, Disclosure, SingleAttribute("a.b.c.d", "D"), StartOptions{})

		assert.ErrorAs(t, err, new(SessionStartError))
	})
	t.Run("unknown kind", func(t *testing.T) {
		c := newTestContext(t)

		_, err := c.orchestrator.Start(ctx, Kind("FOO"), nil, StartOptions{})

		assert.ErrorIs(t, err, ErrUnknownKind)
	})
}

func TestOrchestrator_Reconcile(t *testing.T) {
	ctx := context.Background()
	const verification = "/api/v2/verification"

	t.Run("pending", func(t *testing.T) {
		for _, remoteStatus := range []string{irma.StatusInitialized, irma.StatusConnected, "TIMEOUT"} {
			t.Run(remoteStatus, func(t *testing.T) {
				c := newTestContext(t)
				c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
				c.remoteStatus(verification, remoteStatus)

				result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

				require.NoError(t, err)
				assert.Equal(t, &StatusResult{Status: Pending, RemoteStatus: remoteStatus}, result)
				assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
			})
		}
	})
	t.Run("disclosure completes", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		statusHandler := c.remoteStatus(verification, irma.StatusDone)
		proofHandler := c.remoteResult(verification, irma.ProofResource, c.disclosureResult(t, relyingSessionID, ProofStatusValid, map[string]interface{}{"irma-demo.a.b.city": "Arnhem"}))

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Completed, result.Status)
		assert.Equal(t, irma.StatusDone, result.RemoteStatus)
		assert.Equal(t, ProofStatusValid, result.ProofStatus)
		require.NotNil(t, result.Proof)
		assert.Equal(t, "Arnhem", result.Proof.Attributes["irma-demo.a.b.city"])
		assert.Empty(t, result.JWT)
		assert.Equal(t, Completed, c.storedSession(t, sessionID).Status)
		status, err := c.orchestrator.GetProofStatus(ctx, relyingSessionID, sessionID)
		require.NoError(t, err)
		assert.Equal(t, ProofStatusValid, status)
		assert.Equal(t, float64(1), testutil.ToFloat64(c.orchestrator.metrics.finished.WithLabelValues("DISCLOSURE", "COMPLETED")))

		t.Run("completed session is not reconciled again", func(t *testing.T) {
			result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

			require.NoError(t, err)
			assert.Equal(t, &StatusResult{Status: Completed}, result)
			assert.Equal(t, 1, statusHandler.Calls)
			assert.Equal(t, 1, proofHandler.Calls)
		})
	})
	t.Run("result issued ahead of the local clock completes", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusDone)
		c.remoteResult(verification, irma.ProofResource, c.signResult(t, map[string]interface{}{
			"sub":    "disclosure_result",
			"jti":    relyingSessionID,
			"status": ProofStatusValid,
			"iat":    time.Now().Add(2 * time.Second),
		}))

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Completed, result.Status)
		assert.Equal(t, Completed, c.storedSession(t, sessionID).Status)
	})
	t.Run("disclosure result without jti is stored using the callback data", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending, CallbackData: relyingSessionID})
		c.remoteStatus(verification, irma.StatusDone)
		c.remoteResult(verification, irma.ProofResource, c.signResult(t, map[string]interface{}{
			"sub":    "disclosure_result",
			"status": ProofStatusValid,
		}))

		_, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		proofs, err := c.orchestrator.GetProofs(ctx, relyingSessionID)
		require.NoError(t, err)
		require.Len(t, proofs, 1)
		assert.Equal(t, sessionID, proofs[0].RemoteSessionID)
	})
	t.Run("signature completes", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Signature, Status: Pending})
		c.remoteStatus("/api/v2/signature", irma.StatusDone)
		payload := fmt.Sprintf(`{"sub":"abs_result","jti":"%s","iat":%d,"status":"VALID","message":"I agree",`+
			`"attributes":{"irma-demo.a.b.name":"Alice"},"signature":{"c":%s,"nonce":42}}`, relyingSessionID, time.Now().Unix(), twoPow300)
		signed, err := jws.Sign([]byte(payload), jws.WithKey(jwa.RS256, c.serverKey))
		require.NoError(t, err)
		c.remoteResult("/api/v2/signature", irma.SignatureResource, string(signed)+"\n")

		result, err := c.orchestrator.Reconcile(ctx, Signature, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Completed, result.Status)
		assert.Equal(t, string(signed), result.JWT)
		assert.Equal(t, "I agree", result.Message)
		assert.Equal(t, map[string]string{"irma-demo.a.b.name": "Alice"}, result.Attributes)
		assert.Equal(t, ProofStatusValid, result.ProofStatus)
		signature, err := json.Marshal(result.Proof.Signature)
		require.NoError(t, err)
		assert.JSONEq(t, `{"c":`+twoPow300+`,"nonce":42}`, string(signature))
		assert.Contains(t, string(signature), twoPow300)

		t.Run("signature survives the relying session store", func(t *testing.T) {
			proofs, err := c.orchestrator.GetProofs(ctx, relyingSessionID)

			require.NoError(t, err)
			require.Len(t, proofs, 1)
			stored, err := json.Marshal(proofs[0].Proof.Signature)
			require.NoError(t, err)
			assert.Contains(t, string(stored), twoPow300)
		})
	})
	t.Run("issuance completes without fetching a result", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Issuance, Status: Pending})
		c.remoteStatus("/api/v2/issue", irma.StatusDone)

		result, err := c.orchestrator.Reconcile(ctx, Issuance, sessionID)

		require.NoError(t, err)
		assert.Equal(t, &StatusResult{Status: Completed, RemoteStatus: irma.StatusDone}, result)
		assert.Equal(t, Completed, c.storedSession(t, sessionID).Status)
	})
	t.Run("cancelled session is aborted for good", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusCancelled)

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, &StatusResult{Status: Aborted, RemoteStatus: irma.StatusCancelled}, result)
		assert.Equal(t, Aborted, c.storedSession(t, sessionID).Status)

		// the IRMA server changes its mind
		c.remoteStatus(verification, irma.StatusDone)
		proofHandler := c.remoteResult(verification, irma.ProofResource, c.disclosureResult(t, relyingSessionID, ProofStatusValid, nil))

		result, err = c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Aborted, result.Status)
		assert.Equal(t, Aborted, c.storedSession(t, sessionID).Status)
		assert.Equal(t, 0, proofHandler.Calls)
	})
	t.Run("unknown session at the IRMA server is aborted", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		// no status route: the server responds 404

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, &StatusResult{Status: Aborted, RemoteStatus: irma.StatusNotFound}, result)
		assert.Equal(t, Aborted, c.storedSession(t, sessionID).Status)
	})
	t.Run("poll errors are propagated with FailOnError", func(t *testing.T) {
		c := newTestContext(t)
		c.orchestrator.policy = FailOnError
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		assert.Nil(t, result)
		var pollErr StatusPollError
		require.True(t, errors.As(err, &pollErr))
		assert.Equal(t, sessionID, pollErr.SessionID)
		assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
	})
	t.Run("cancelled context doesn't abort the session", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusCancelled)
		cancelledCtx, cancel := context.WithCancel(ctx)
		cancel()

		_, err := c.orchestrator.Reconcile(cancelledCtx, Disclosure, sessionID)

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
	})
	t.Run("invalid result keeps the session pending", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusDone)
		c.remoteResult(verification, irma.ProofResource, c.signResult(t, map[string]interface{}{
			"sub":    "abs_result",
			"jti":    relyingSessionID,
			"status": ProofStatusValid,
		}))

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		assert.Nil(t, result)
		assert.ErrorIs(t, err, token.ErrSubjectMismatch)
		var verificationErr token.VerificationError
		assert.ErrorAs(t, err, &verificationErr)
		assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
		proofs, err := c.orchestrator.GetProofs(ctx, relyingSessionID)
		require.NoError(t, err)
		assert.Empty(t, proofs)
	})
	t.Run("result signed by another key keeps the session pending", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusDone)
		otherKey, err := jwk.FromRaw(brokerKey)
		require.NoError(t, err)
		c.serverKey = otherKey
		c.remoteResult(verification, irma.ProofResource, c.disclosureResult(t, relyingSessionID, ProofStatusValid, nil))

		_, err = c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		assert.ErrorIs(t, err, token.ErrInvalidSignature)
		assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
	})
	t.Run("unavailable result keeps the session pending", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusDone)
		c.router.Handle(http.MethodGet, fmt.Sprintf("%s/%s/%s", verification, sessionID, irma.ProofResource), &testhttp.Handler{StatusCode: http.StatusInternalServerError})

		_, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		assert.ErrorIs(t, err, ErrResultUnavailable)
		assert.Equal(t, Pending, c.storedSession(t, sessionID).Status)
	})
	t.Run("session unknown locally is treated as pending", func(t *testing.T) {
		c := newTestContext(t)
		c.remoteStatus(verification, irma.StatusCancelled)

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Aborted, result.Status)
		assert.Equal(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Aborted}, c.storedSession(t, sessionID))
	})
	t.Run("kind mismatch", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Signature, Status: Pending})

		_, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		assert.ErrorIs(t, err, ErrKindMismatch)
	})
	t.Run("concurrent reconciles complete the session once", func(t *testing.T) {
		c := newTestContext(t)
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		statusHandler := c.remoteStatus(verification, irma.StatusDone)
		proofHandler := c.remoteResult(verification, irma.ProofResource, c.disclosureResult(t, relyingSessionID, ProofStatusValid, nil))

		wg := sync.WaitGroup{}
		errs := make(chan error, 10)
		for i := 0; i < 10; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)
				if err == nil && result.Status != Completed {
					err = fmt.Errorf("unexpected status: %s", result.Status)
				}
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			assert.NoError(t, err)
		}
		assert.Equal(t, 1, statusHandler.Calls)
		assert.Equal(t, 1, proofHandler.Calls)
		proofs, err := c.orchestrator.GetProofs(ctx, relyingSessionID)
		require.NoError(t, err)
		assert.Len(t, proofs, 1)
	})
	t.Run("redis", func(t *testing.T) {
		engine, _ := storage.NewTestStorageEngineRedis(t)
		c := newTestContextWithDatabase(t, engine.GetSessionDatabase())
		c.storeSession(t, RemoteSession{ID: sessionID, Kind: Disclosure, Status: Pending})
		c.remoteStatus(verification, irma.StatusDone)
		c.remoteResult(verification, irma.ProofResource, c.disclosureResult(t, relyingSessionID, ProofStatusValid, map[string]interface{}{"irma-demo.a.b.city": "Arnhem"}))

		result, err := c.orchestrator.Reconcile(ctx, Disclosure, sessionID)

		require.NoError(t, err)
		assert.Equal(t, Completed, result.Status)
		attributes, err := c.orchestrator.GetAttributes(ctx, relyingSessionID)
		require.NoError(t, err)
		assert.Equal(t, map[string][]string{"irma-demo.a.b.city": {"Arnhem"}}, attributes)
	})
}

func TestNotFoundOnError(t *testing.T) {
	status, err := NotFoundOnError(StatusPollError{Kind: Disclosure, SessionID: sessionID, Cause: errors.New("connection refused")})

	assert.NoError(t, err)
	assert.Equal(t, irma.StatusNotFound, status)
}

func Test_statusErrorPolicy(t *testing.T) {
	cause := errors.New("connection refused")
	pollErr := StatusPollError{Kind: Disclosure, SessionID: sessionID, Cause: cause}

	t.Run("default", func(t *testing.T) {
		policy, err := statusErrorPolicy("")
		require.NoError(t, err)

		status, err := policy(pollErr)

		assert.NoError(t, err)
		assert.Equal(t, irma.StatusNotFound, status)
	})
	t.Run("fail", func(t *testing.T) {
		policy, err := statusErrorPolicy("fail")
		require.NoError(t, err)

		_, err = policy(pollErr)

		assert.ErrorIs(t, err, cause)
	})
	t.Run("unknown", func(t *testing.T) {
		_, err := statusErrorPolicy("ignore")

		assert.EqualError(t, err, `irma.poll.onerror: unknown policy "ignore" (expected "notfound" or "fail")`)
	})
}

func TestStatusPollError_Error(t *testing.T) {
	cause := errors.New("connection refused")
	err := StatusPollError{Kind: Signature, SessionID: sessionID, Cause: cause}

	assert.EqualError(t, err, "unable to poll status of IRMA SIGNATURE session session-token: connection refused")
	assert.ErrorIs(t, err, cause)
}
