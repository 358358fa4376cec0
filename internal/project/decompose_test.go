package project

import (
	"errors"
	"testing"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

var fixedClassifier = ClassifierFunc(func(text string) models.Role { return models.RoleUniversal })

func TestParseDecomposition_JSON(t *testing.T) {
	resp := "Sure!\n```json\n" + `[
  {"title": "Design schema", "role": "reasoning_titan"},
  {"title": "Write API", "role": "coding", "depends_on": ["design schema", 0]},
  {"title": "Docs", "role": "bogus", "depends_on": ["1"], "optional": true}
]` + "\n```"

	subtasks, format, err := ParseDecomposition(resp, "brief", fixedClassifier)
	if err != nil {
		t.Fatalf("ParseDecomposition() error = %v", err)
	}
	if format != FormatJSON {
		t.Errorf("format = %s, want json", format)
	}
	if len(subtasks) != 3 {
		t.Fatalf("got %d sub-tasks, want 3", len(subtasks))
	}
	if subtasks[0].Role != models.RoleReasoning {
		t.Errorf("legacy role alias not parsed: %s", subtasks[0].Role)
	}
	if got := subtasks[1].DependsOn; len(got) != 1 || got[0] != 0 {
		t.Errorf("DependsOn = %v, want [0] with duplicates removed", got)
	}
	if subtasks[2].Role != models.RoleUniversal || !subtasks[2].Optional {
		t.Errorf("unknown role should be classified, got %+v", subtasks[2])
	}
	for i, st := range subtasks {
		if st.Index != i || st.Status != models.SubTaskPending {
			t.Errorf("sub-task %d: index %d status %s", i, st.Index, st.Status)
		}
	}
}

func TestParseDecomposition_ListFallback(t *testing.T) {
	resp := `I would split it like this:
1. Research: survey competitors
2) Build the backend
- Write the launch post`

	subtasks, format, err := ParseDecomposition(resp, "brief", fixedClassifier)
	if format != FormatList {
		t.Fatalf("format = %s, want list", format)
	}
	if err == nil {
		t.Error("expected the JSON rejection reason")
	}
	want := []string{"Research", "Build the backend", "Write the launch post"}
	if len(subtasks) != len(want) {
		t.Fatalf("got %d sub-tasks, want %d", len(subtasks), len(want))
	}
	for i, w := range want {
		if subtasks[i].Title != w {
			t.Errorf("subtasks[%d].Title = %q, want %q", i, subtasks[i].Title, w)
		}
	}
	if subtasks[0].Description != "survey competitors" {
		t.Errorf("description = %q", subtasks[0].Description)
	}
}

func TestParseDecomposition_SingleFallback(t *testing.T) {
	subtasks, format, _ := ParseDecomposition("I cannot help with that.", "build a chat bot for support", fixedClassifier)
	if format != FormatSingle || len(subtasks) != 1 {
		t.Fatalf("format = %s, len = %d", format, len(subtasks))
	}
	if subtasks[0].Title != "Build A Chat Bot For Project" {
		t.Errorf("title = %q", subtasks[0].Title)
	}
	if subtasks[0].Description != "build a chat bot for support" {
		t.Errorf("description = %q", subtasks[0].Description)
	}
}

func TestParseDecomposition_UnknownDependency(t *testing.T) {
	resp := `[{"title": "A", "depends_on": ["Z"]}]`
	_, format, err := ParseDecomposition(resp, "brief", fixedClassifier)
	if format != FormatSingle || err == nil {
		t.Errorf("format = %s err = %v, want single fallback with reason", format, err)
	}
}

func TestProjectName(t *testing.T) {
	tests := []struct {
		brief string
		want  string
	}{
		{`Build "Todo Pro" with auth`, "Todo Pro"},
		{"build a todo app with user authentication", "Build A Todo App With Project"},
		{"ship it", "Ship It Project"},
		{`unterminated "quote here`, `Unterminated "Quote Here Project`},
		{`empty "" quotes`, `Empty "" Quotes Project`},
	}
	for _, tt := range tests {
		if got := ProjectName(tt.brief); got != tt.want {
			t.Errorf("ProjectName(%q) = %q, want %q", tt.brief, got, tt.want)
		}
	}
}

func TestBuildGraph(t *testing.T) {
	subtasks := []models.SubTask{
		{Index: 0, Status: models.SubTaskPending},
		{Index: 1, DependsOn: []int{0}, Status: models.SubTaskPending},
		{Index: 2, DependsOn: []int{0, 1}, Status: models.SubTaskPending},
		{Index: 3, Status: models.SubTaskPending},
	}
	g, err := BuildGraph(subtasks)
	if err != nil {
		t.Fatalf("BuildGraph() error = %v", err)
	}

	if got := g.Ready(subtasks); len(got) != 2 || got[0] != 0 || got[1] != 3 {
		t.Errorf("Ready() = %v, want [0 3]", got)
	}
	subtasks[0].Status = models.SubTaskCompleted
	if got := g.Ready(subtasks); len(got) != 2 || got[0] != 1 {
		t.Errorf("Ready() after 0 = %v, want [1 3]", got)
	}
	if got := g.Dependents(0); len(got) != 2 {
		t.Errorf("Dependents(0) = %v", got)
	}

	order := g.TopologicalSort()
	pos := make(map[int]int)
	for i, n := range order {
		pos[n] = i
	}
	if pos[0] > pos[1] || pos[1] > pos[2] {
		t.Errorf("TopologicalSort() = %v", order)
	}
}

func TestBuildGraph_Rejects(t *testing.T) {
	tests := []struct {
		name      string
		subtasks  []models.SubTask
		wantCycle bool
	}{
		{"self", []models.SubTask{{DependsOn: []int{0}}}, true},
		{"loop", []models.SubTask{{DependsOn: []int{2}}, {DependsOn: []int{0}}, {DependsOn: []int{1}}}, true},
		{"out of range", []models.SubTask{{DependsOn: []int{5}}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildGraph(tt.subtasks)
			if err == nil {
				t.Fatal("BuildGraph() error = nil")
			}
			if errors.Is(err, ErrCycleDetected) != tt.wantCycle {
				t.Errorf("BuildGraph() error = %v, cycle = %v", err, tt.wantCycle)
			}
		})
	}
}
