package codec

import (
	"testing"

	"google.golang.org/grpc/encoding"
)

type sample struct {
	ID    string `json:"id"`
	Count int    `json:"count"`
}

func TestJSON_Registered(t *testing.T) {
	t.Parallel()

	c := encoding.GetCodec(Name)
	if c == nil {
		t.Fatal("expected json codec to be registered")
	}
	if c.Name() != Name {
		t.Fatalf("unexpected codec name %s", c.Name())
	}
}

func TestJSON_RoundTrip(t *testing.T) {
	t.Parallel()

	data, err := JSON{}.Marshal(&sample{ID: "a", Count: 2})
	if err != nil {
		t.Fatalf("Marshal returned error: %v", err)
	}
	if string(data) != `{"id":"a","count":2}` {
		t.Fatalf("unexpected payload %s", data)
	}

	var out sample
	if err := (JSON{}).Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if out.ID != "a" || out.Count != 2 {
		t.Fatalf("unexpected message %+v", out)
	}
}

func TestJSON_EmptyPayloadAndNil(t *testing.T) {
	t.Parallel()

	var out sample
	if err := (JSON{}).Unmarshal(nil, &out); err != nil {
		t.Fatalf("expected empty payload to be accepted, got %v", err)
	}
	if _, err := (JSON{}).Marshal(nil); err == nil {
		t.Fatal("expected nil message to be rejected")
	}
}
