package vm

import (
	"reflect"
	"testing"
)

func TestImageRoundTrip(t *testing.T) {
	prog := Program{
		{Kind: Push, Arg: 8, HasArg: true},
		{Kind: Push, Arg: 0, HasArg: true},
		{Kind: Store},
		{Kind: Call, Arg: 5, HasArg: true},
		{Kind: Halt},
		{Kind: Push, Arg: -3, HasArg: true},
		{Kind: Rot},
		{Kind: Ret},
	}
	data, err := EncodeImage(prog)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	got, err := DecodeImage(data)
	if err != nil {
		t.Fatalf("DecodeImage: %v", err)
	}
	if !reflect.DeepEqual(got, prog) {
		t.Errorf("round trip mismatch:\n got %v\nwant %v", got, prog)
	}
}

func TestImageDeterministic(t *testing.T) {
	prog := Program{
		{Kind: Push, Arg: 1, HasArg: true},
		{Kind: Halt},
	}
	a, err := EncodeImage(prog)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	b, err := EncodeImage(prog)
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}
	if !reflect.DeepEqual(a, b) {
		t.Error("encoding is not deterministic")
	}
}

func TestDecodeImageRejectsBadInput(t *testing.T) {
	good, err := EncodeImage(Program{{Kind: Halt}})
	if err != nil {
		t.Fatalf("EncodeImage: %v", err)
	}

	t.Run("truncated", func(t *testing.T) {
		if _, err := DecodeImage(good[:3]); err == nil {
			t.Error("expected error for truncated image")
		}
	})
	t.Run("bad magic", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[0] = 'X'
		if _, err := DecodeImage(bad); err == nil {
			t.Error("expected error for bad magic")
		}
	})
	t.Run("future version", func(t *testing.T) {
		bad := append([]byte(nil), good...)
		bad[4], bad[5] = 0xff, 0xff
		if _, err := DecodeImage(bad); err == nil {
			t.Error("expected error for unsupported version")
		}
	})
	t.Run("corrupt payload", func(t *testing.T) {
		bad := append([]byte(nil), good[:6]...)
		bad = append(bad, 0xff)
		if _, err := DecodeImage(bad); err == nil {
			t.Error("expected error for corrupt payload")
		}
	})
}
