package webhook

import (
	"encoding/base64"
	"errors"
	"strconv"
	"testing"
	"time"

	domainErrors "identity-gateway/domain/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	svix "github.com/svix/svix-webhooks/go"
)

var (
	testSecret  = "whsec_" + base64.StdEncoding.EncodeToString([]byte("identity-gateway-test-secret-01"))
	otherSecret = "whsec_" + base64.StdEncoding.EncodeToString([]byte("some-other-secret-entirely-0002"))
	testPayload = []byte(`{"type":"user.created","data":{"id":"u1"}}`)
)

// sign 使用 svix 对载荷签名，返回完整请求头
func sign(t *testing.T, secret, msgID string, ts time.Time, payload []byte) Headers {
	t.Helper()
	wh, err := svix.NewWebhook(secret)
	require.NoError(t, err)
	sig, err := wh.Sign(msgID, ts, payload)
	require.NoError(t, err)
	return Headers{ID: msgID, Timestamp: strconv.FormatInt(ts.Unix(), 10), Signature: sig}
}

func newTestVerifier(t *testing.T, secret string, now time.Time) *Verifier {
	t.Helper()
	v, err := NewVerifier(secret, 5*time.Minute)
	require.NoError(t, err)
	v.now = func() time.Time { return now }
	return v
}

func assertRejected(t *testing.T, err error, reason Reason) {
	t.Helper()
	require.Error(t, err)
	assert.ErrorIs(t, err, domainErrors.ErrWebhookRejected)
	var rej *RejectionError
	require.True(t, errors.As(err, &rej))
	assert.Equal(t, reason, rej.Reason)
}

func TestVerifier_NoSecret_PassThrough(t *testing.T) {
	v := newTestVerifier(t, "", time.Now())
	assert.False(t, v.Enabled())

	// 没有任何签名头也放行，但标记为未校验
	ev, err := v.Verify(testPayload, Headers{})
	require.NoError(t, err)
	assert.False(t, ev.Verified)
	assert.Equal(t, testPayload, ev.Payload)
}

func TestVerifier_ValidSignature(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestVerifier(t, testSecret, now)

	h := sign(t, testSecret, "msg_1", now, testPayload)
	ev, err := v.Verify(testPayload, h)

	require.NoError(t, err)
	assert.True(t, ev.Verified)
	assert.Equal(t, "msg_1", ev.Headers.ID)
}

func TestVerifier_Rejections(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)

	testCases := []struct {
		name    string
		headers func(t *testing.T) Headers
		payload []byte
		reason  Reason
	}{
		{
			name:    "缺少签名头",
			headers: func(t *testing.T) Headers { return Headers{ID: "msg_1"} },
			payload: testPayload,
			reason:  ReasonMissingHeaders,
		},
		{
			name: "用其他密钥签名",
			headers: func(t *testing.T) Headers {
				return sign(t, otherSecret, "msg_1", now, testPayload)
			},
			payload: testPayload,
			reason:  ReasonBadSignature,
		},
		{
			name: "载荷被篡改",
			headers: func(t *testing.T) Headers {
				return sign(t, testSecret, "msg_1", now, testPayload)
			},
			payload: []byte(`{"type":"user.deleted","data":{"id":"u1"}}`),
			reason:  ReasonBadSignature,
		},
		{
			name: "时间戳过旧（签名本身有效）",
			headers: func(t *testing.T) Headers {
				return sign(t, testSecret, "msg_1", now.Add(-6*time.Minute), testPayload)
			},
			payload: testPayload,
			reason:  ReasonStale,
		},
		{
			name: "时间戳在未来（签名本身有效）",
			headers: func(t *testing.T) Headers {
				return sign(t, testSecret, "msg_1", now.Add(6*time.Minute), testPayload)
			},
			payload: testPayload,
			reason:  ReasonFuture,
		},
		{
			name: "时间戳不是数字",
			headers: func(t *testing.T) Headers {
				h := sign(t, testSecret, "msg_1", now, testPayload)
				h.Timestamp = "yesterday"
				return h
			},
			payload: testPayload,
			reason:  ReasonInvalidTimestamp,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			v := newTestVerifier(t, testSecret, now)
			ev, err := v.Verify(tc.payload, tc.headers(t))
			assert.Nil(t, ev)
			assertRejected(t, err, tc.reason)
		})
	}
}

func TestVerifier_WithinTolerance(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	v := newTestVerifier(t, testSecret, now)

	h := sign(t, testSecret, "msg_2", now.Add(-4*time.Minute), testPayload)
	ev, err := v.Verify(testPayload, h)

	require.NoError(t, err)
	assert.True(t, ev.Verified)
}

func TestNewVerifier_InvalidSecret(t *testing.T) {
	_, err := NewVerifier("whsec_%%%not-base64%%%", time.Minute)
	assert.Error(t, err)
}
