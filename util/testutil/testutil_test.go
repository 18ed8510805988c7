package testutil

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

type Person struct {
	Name string
	Age  int
}

func TestJS(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want string
	}{
		{
			name: "simple struct",
			arg:  Person{"John Doe", 30},
			want: `{"Name":"John Doe","Age":30}`,
		},
		{
			name: "strings",
			arg:  []string{"hungry", "full"},
			want: `["hungry","full"]`,
		},
		{
			name: "unmarshalable",
			arg:  make(chan int),
			want: "(chan int)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := JS(tt.arg)
			if tt.name == "unmarshalable" {
				if len(got) < len(tt.want) || got[:len(tt.want)] != tt.want {
					t.Errorf("JS() = %v, want prefix %v", got, tt.want)
				}
				return
			}
			if got != tt.want {
				t.Errorf("JS() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDwimjs(t *testing.T) {
	tests := []struct {
		name string
		arg  interface{}
		want interface{}
	}{
		{
			name: "valid JSON string",
			arg:  `{"op":"trigger","event":"eat"}`,
			want: map[string]interface{}{"op": "trigger", "event": "eat"},
		},
		{
			name: "valid JSON bytes",
			arg:  []byte(`[1,2]`),
			want: []interface{}{float64(1), float64(2)},
		},
		{
			name: "non-string, non-byte-slice type",
			arg:  12345,
			want: 12345,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Dwimjs(tt.arg); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Dwimjs() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestWriteFile(t *testing.T) {
	dir := t.TempDir()
	filename := WriteFile(t, dir, "x.yaml", "initial: a\n")
	if filename != filepath.Join(dir, "x.yaml") {
		t.Fatal(filename)
	}
	bs, err := os.ReadFile(filename)
	if err != nil {
		t.Fatal(err)
	}
	if string(bs) != "initial: a\n" {
		t.Fatal(string(bs))
	}
}
