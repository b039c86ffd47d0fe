package osis

import (
	"reflect"
	"testing"

	"github.com/FocuswithJustin/osistext/core/bible"
	"github.com/FocuswithJustin/osistext/core/errors"
)

func TestParseVerseList(t *testing.T) {
	gen := func(c, v int) bible.VerseID { return bible.MustVerseID(bible.Genesis, c, v) }

	tests := []struct {
		name string
		in   string
		want []bible.VerseID
	}{
		{"numeric", "1001001", []bible.VerseID{gen(1, 1)}},
		{"osis id", "Gen.1.2", []bible.VerseID{gen(1, 2)}},
		{"numbered book code", "1Sam.3.10", []bible.VerseID{bible.MustVerseID(bible.Samuel1, 3, 10)}},
		{"range", "Gen.1.1-3", []bible.VerseID{gen(1, 1), gen(1, 2), gen(1, 3)}},
		{"mixed list keeps order", "Gen.2.1, 1001001 Gen.2.1", []bible.VerseID{gen(2, 1), gen(1, 1), gen(2, 1)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseVerseList(tt.in)
			if err != nil {
				t.Fatalf("ParseVerseList(%q) error = %v", tt.in, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("ParseVerseList(%q) = %v; want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestParseVerseList_Errors(t *testing.T) {
	tests := []struct {
		in     string
		target error
	}{
		{"", errors.ErrInvalidInput},
		{" , ", errors.ErrInvalidInput},
		{"Gen", errors.ErrInvalidInput},
		{"Gen.1", errors.ErrInvalidInput},
		{"Gen.x.1", errors.ErrInvalidInput},
		{"1000000", errors.ErrInvalidInput},
		{"Gen.1.3-1", errors.ErrInvalidInput},
		{"Gen.1.1-1000", errors.ErrInvalidInput},
		{"Gen.1.1-2000000000", errors.ErrInvalidInput},
		{"Gen.1.1-9223372036854775807", errors.ErrInvalidInput},
		{"Gen.1.1-99999999999999999999", errors.ErrInvalidInput},
		{"Bar.1.1", errors.ErrUnsupported},
	}
	for _, tt := range tests {
		if _, err := ParseVerseList(tt.in); !errors.Is(err, tt.target) {
			t.Errorf("ParseVerseList(%q) error = %v; want %v", tt.in, err, tt.target)
		}
	}
}

func TestResolveBook(t *testing.T) {
	tests := []struct {
		in   string
		want bible.Book
	}{
		{"GENESIS", bible.Genesis},
		{"1 samuel", bible.Samuel1},
		{"1Sam", bible.Samuel1},
		{"John", bible.John},
		{"BARUCH", bible.Baruch},
	}
	for _, tt := range tests {
		if got, err := ResolveBook(tt.in); err != nil || got != tt.want {
			t.Errorf("ResolveBook(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
	if _, err := ResolveBook("Hezekiah"); !errors.Is(err, errors.ErrInvalidInput) {
		t.Errorf("ResolveBook(Hezekiah) error = %v", err)
	}
}
