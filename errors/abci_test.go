package errors

import (
	"fmt"
	"testing"
)

func TestABCInfo(t *testing.T) {
	cases := map[string]struct {
		err      error
		debug    bool
		wantCode uint32
		wantLog  string
	}{
		"plain registered error": {
			err:      ErrUnauthorized,
			debug:    false,
			wantLog:  "unauthorized",
			wantCode: ErrUnauthorized.code,
		},
		"wrapped registered error": {
			err:      Wrap(Wrap(ErrUnauthorized, "foo"), "bar"),
			debug:    false,
			wantLog:  "bar: foo: unauthorized",
			wantCode: ErrUnauthorized.code,
		},
		"nil is empty message": {
			err:      nil,
			debug:    false,
			wantLog:  "",
			wantCode: 0,
		},
		"nil registered error is not an error": {
			err:      (*Error)(nil),
			debug:    false,
			wantLog:  "",
			wantCode: 0,
		},
		"stdlib is generic message": {
			err:      fmt.Errorf("cannot read file"),
			debug:    false,
			wantLog:  "internal error",
			wantCode: 1,
		},
		"stdlib returns error message in debug mode": {
			err:      fmt.Errorf("cannot read file"),
			debug:    true,
			wantLog:  "cannot read file",
			wantCode: 1,
		},
		"wrapped stdlib is only a generic message": {
			err:      Wrap(fmt.Errorf("cannot read file"), "foo"),
			debug:    false,
			wantLog:  "internal error",
			wantCode: 1,
		},
	}

	for testName, tc := range cases {
		t.Run(testName, func(t *testing.T) {
			code, log := ABCIInfo(tc.err, tc.debug)
			if code != tc.wantCode {
				t.Errorf("want %d code, got %d", tc.wantCode, code)
			}
			if log != tc.wantLog {
				t.Errorf("want %q log, got %q", tc.wantLog, log)
			}
		})
	}
}

func TestABCIErrorRoundTrip(t *testing.T) {
	code, log := ABCIInfo(Wrap(ErrInsufficientAmount, "taker"), false)
	err := ABCIError(code, log)
	if !ErrInsufficientAmount.Is(err) {
		t.Fatalf("want insufficient amount, got %+v", err)
	}
	if ABCIError(SuccessABCICode, "") != nil {
		t.Fatal("success code must not produce an error")
	}
}

func TestRedact(t *testing.T) {
	if err := Redact(ErrPanic, false); ErrPanic.Is(err) {
		t.Error("reduct must not pass through panic error")
	}
	if err := Redact(ErrPanic, true); !ErrPanic.Is(err) {
		t.Error("reduct should pass through panic error in debug mode")
	}
	if err := Redact(ErrNotFound, false); !ErrNotFound.Is(err) {
		t.Error("registered errors must not be redacted")
	}
	if err := Redact(fmt.Errorf("secret"), false); err.Error() != "internal error" {
		t.Errorf("stdlib error must be redacted, got %q", err)
	}
}
