package notify

import (
	"errors"
	"net/url"
	"strings"
	"testing"
)

func onlineClassifier() *Classifier {
	return NewClassifier(func() bool { return true })
}

func TestClassifyStatusCodes(t *testing.T) {
	c := onlineClassifier()

	cases := []struct {
		name string
		err  error
		want Kind
	}{
		{"conflict", &StatusError{Status: 409, Message: "duplicate"}, KindEmailExists},
		{"email message", &StatusError{Status: 422, Message: "Email already registered"}, KindEmailExists},
		{"email exists message", errors.New("this email address exists"), KindEmailExists},
		{"bad request", &StatusError{Status: 400, Message: "bad credentials"}, KindAuthFail},
		{"unauthorized", &StatusError{Status: 401, Message: "token expired"}, KindAuthFail},
		{"server error", &StatusError{Status: 500}, KindAPIFail},
		{"not found", &StatusError{Status: 404}, KindAPIFail},
		{"dropped connection", &StatusError{Status: 0}, KindNetwork},
		{"plain error", errors.New("something odd"), KindUnknown},
		{"nil", nil, KindUnknown},
	}

	for _, tc := range cases {
		got := c.Classify(tc.err)
		if got.Kind != tc.want {
			t.Errorf("%s: expected %s, got %s", tc.name, tc.want, got.Kind)
		}
	}
}

func TestClassifyServerErrorMessageContainsStatus(t *testing.T) {
	c := onlineClassifier()
	got := c.Classify(&StatusError{Status: 500, Message: "boom"})
	if got.Kind != KindAPIFail {
		t.Fatalf("expected API_FAIL, got %s", got.Kind)
	}
	if !strings.Contains(got.Message, "500") {
		t.Errorf("expected message to mention status, got %q", got.Message)
	}
}

func TestClassifyOfflineWinsOverEverything(t *testing.T) {
	c := NewClassifier(func() bool { return false })

	for _, err := range []error{
		&StatusError{Status: 409},
		&StatusError{Status: 500},
		errors.New("whatever"),
		nil,
	} {
		if got := c.Classify(err); got.Kind != KindNetwork {
			t.Errorf("offline classification of %v: expected NETWORK, got %s", err, got.Kind)
		}
	}
}

func TestClassifyTransportFailure(t *testing.T) {
	c := onlineClassifier()

	err := &url.Error{Op: "Get", URL: "http://example.com", Err: errors.New("connection refused")}
	if got := c.Classify(err); got.Kind != KindNetwork {
		t.Errorf("expected NETWORK for transport failure, got %s", got.Kind)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	c := onlineClassifier()

	app := NewAppError(KindCreateFail, "could not create account", nil)
	if got := c.Classify(app); got != app {
		t.Error("classifying an AppError should return it unchanged")
	}
}

func TestClassifyDeterministic(t *testing.T) {
	c := onlineClassifier()
	err := &StatusError{Status: 503, Message: "unavailable"}

	first := c.Classify(err)
	second := c.Classify(err)
	if first.Kind != second.Kind {
		t.Errorf("classification not stable: %s then %s", first.Kind, second.Kind)
	}
}

func TestClassifyTotality(t *testing.T) {
	known := map[Kind]bool{
		KindNetwork: true, KindSchema: true, KindCreateFail: true,
		KindAuthFail: true, KindEmailExists: true, KindAPIFail: true,
		KindUnknown: true,
	}
	c := onlineClassifier()

	inputs := []error{
		nil,
		errors.New("x"),
		&StatusError{Status: 301},
		&StatusError{Status: 418},
		&url.Error{Op: "Get", URL: "u", Err: errors.New("eof")},
		NewAppError(KindSchema, "bad field", nil),
	}
	for _, err := range inputs {
		got := c.Classify(err)
		if !known[got.Kind] {
			t.Errorf("classification of %v produced unknown kind %q", err, got.Kind)
		}
	}
}
