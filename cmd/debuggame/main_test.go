package main

import (
	"bytes"
	"strings"
	"testing"
)

const transcript = `INITIAL_ENERGY 1000 MAX_CELL_PRODUCTION 1000 NEW_ENTITY_ENERGY_COST 1000
2 1
0 0 0
1 1 1
2 2
10 20
30 40
1
0 0 0 1000
1 1 0 1000
3 1 1 7
1
1 1 6
`

func TestReplayTranscriptPrintsEachTurn(t *testing.T) {
	var out bytes.Buffer
	turns, err := replayTranscript(strings.NewReader(transcript), &out, 1, 200, false, nil, nil)
	if err != nil {
		t.Fatalf("replay: %v\n%s", err, out.String())
	}
	if turns != 1 {
		t.Fatalf("turns=%d want=1", turns)
	}
	got := out.String()
	for _, want := range []string{
		"Map 2x2, 2 players, me=1, 3 constants",
		"total halite 100",
		"Turn   1 | ships   1 |",
		"halite 0:0 1:1000",
		"ship 3 at (1,1) cargo=7 cell=6",
	} {
		if !strings.Contains(got, want) {
			t.Fatalf("output missing %q:\n%s", want, got)
		}
	}
}

func TestReplayTranscriptReportsDesync(t *testing.T) {
	broken := strings.Replace(transcript, "3 1 1 7\n", "3 1 1\n", 1)
	var out bytes.Buffer
	turns, err := replayTranscript(strings.NewReader(broken), &out, 1, 200, true, nil, nil)
	if err == nil {
		t.Fatalf("expected desync error")
	}
	if turns != 0 {
		t.Fatalf("turns=%d want=0", turns)
	}
	if !strings.Contains(err.Error(), "line 11") {
		t.Fatalf("error should name the bad line: %v", err)
	}
}
