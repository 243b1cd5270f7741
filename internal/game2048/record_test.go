package game2048

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRecordRoundTrip(t *testing.T) {
	original := New(SeededSource(11))
	for _, dir := range []Direction{DirLeft, DirUp, DirLeft, DirDown} {
		if _, err := original.Move(dir); err != nil {
			t.Fatalf("Move(%s) failed: %v", dir, err)
		}
	}

	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("json.Marshal() failed: %v", err)
	}

	rec, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord() failed: %v", err)
	}

	restored, err := FromRecord(rec, nil)
	if err != nil {
		t.Fatalf("FromRecord() failed: %v", err)
	}

	if diff := cmp.Diff(original.State(), restored.State()); diff != "" {
		t.Errorf("round trip mismatch (-original +restored):\n%s", diff)
	}
}

func TestRestoredEngineContinuesIdentically(t *testing.T) {
	seed := New(SeededSource(21))
	seed.Move(DirLeft)
	seed.Move(DirUp)
	rec := seed.Record()

	a, err := FromRecord(rec, SeededSource(99))
	if err != nil {
		t.Fatalf("FromRecord() failed: %v", err)
	}

	data, _ := json.Marshal(a)
	rec2, err := UnmarshalRecord(data)
	if err != nil {
		t.Fatalf("UnmarshalRecord() failed: %v", err)
	}
	b, err := FromRecord(rec2, SeededSource(99))
	if err != nil {
		t.Fatalf("FromRecord() failed: %v", err)
	}

	dirs := []Direction{DirRight, DirDown, DirLeft, DirUp}
	for i := range 50 {
		dir := dirs[i%len(dirs)]
		sa, _ := a.Move(dir)
		sb, _ := b.Move(dir)
		if diff := cmp.Diff(sa, sb); diff != "" {
			t.Fatalf("move %d (%s) diverged (-a +b):\n%s", i, dir, diff)
		}
	}
}

func TestRecordOfCopiesRows(t *testing.T) {
	s := State{Board: Board{{2, 0, 0, 0}}, Status: StatusInProgress}
	rec := RecordOf(s)
	rec.Board[0][0] = 4

	if s.Board[0][0] != 2 {
		t.Error("RecordOf shares rows with the snapshot")
	}
}

func TestUnmarshalRecordMalformed(t *testing.T) {
	tests := []struct {
		name string
		json string
	}{
		{"not json", `{`},
		{"board wrong type", `{"board":"x","score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"too few rows", `{"board":[[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"short row", `{"board":[[0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"negative tile", `{"board":[[-2,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"fractional tile", `{"board":[[2.5,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"not a power of two", `{"board":[[6,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"tile too large", `{"board":[[262144,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`},
		{"missing score", `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"moves":0,"status":"IN_PROGRESS"}`},
		{"negative moves", `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":-1,"status":"IN_PROGRESS"}`},
		{"score wrong type", `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":"10","moves":0,"status":"IN_PROGRESS"}`},
		{"missing status", `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0}`},
		{"unknown status", `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"FINISHED"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UnmarshalRecord([]byte(tt.json))
			if !errors.Is(err, ErrMalformedState) {
				t.Errorf("UnmarshalRecord() error = %v, want ErrMalformedState", err)
			}
			_, err = DecodeState([]byte(tt.json))
			if !errors.Is(err, ErrMalformedState) {
				t.Errorf("DecodeState() error = %v, want ErrMalformedState", err)
			}
		})
	}
}

func TestFromRecordRejectsMalformed(t *testing.T) {
	score, moves := 0, 0
	rec := Record{
		Board:  [][]int{{0, 0, 0, 0}, {0, 0, 0, 0}, {0, 0, 0, 0}},
		Score:  &score,
		Moves:  &moves,
		Status: string(StatusInProgress),
	}

	e, err := FromRecord(rec, nil)
	if !errors.Is(err, ErrMalformedState) {
		t.Fatalf("FromRecord() error = %v, want ErrMalformedState", err)
	}
	if e != nil {
		t.Error("FromRecord() returned an engine for a malformed record")
	}
}

func TestUnmarshalRecordAcceptsEmptyBoard(t *testing.T) {
	data := `{"board":[[0,0,0,0],[0,0,0,0],[0,0,0,0],[0,0,0,0]],"score":0,"moves":0,"status":"IN_PROGRESS"}`

	rec, err := UnmarshalRecord([]byte(data))
	if err != nil {
		t.Fatalf("UnmarshalRecord() failed: %v", err)
	}
	if *rec.Score != 0 || *rec.Moves != 0 || rec.Status != "IN_PROGRESS" {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestDecodeStateRestoresEngine(t *testing.T) {
	original := New(SeededSource(5))
	for _, dir := range []Direction{DirLeft, DirUp, DirRight, DirDown} {
		if _, err := original.Move(dir); err != nil {
			t.Fatalf("Move(%s) failed: %v", dir, err)
		}
	}
	data, err := json.Marshal(original)
	if err != nil {
		t.Fatalf("Marshal() failed: %v", err)
	}

	st, err := DecodeState(data)
	if err != nil {
		t.Fatalf("DecodeState() failed: %v", err)
	}
	if st != original.State() {
		t.Errorf("DecodeState() = %+v, want %+v", st, original.State())
	}

	a := Restore(st, SeededSource(3))
	b, err := FromRecord(original.Record(), SeededSource(3))
	if err != nil {
		t.Fatalf("FromRecord() failed: %v", err)
	}
	for _, dir := range []Direction{DirUp, DirLeft, DirDown, DirRight} {
		sa, _ := a.Move(dir)
		sb, _ := b.Move(dir)
		if sa != sb {
			t.Fatalf("Restore and FromRecord diverged after %s", dir)
		}
	}
}
