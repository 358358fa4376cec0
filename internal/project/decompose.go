package project

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"

	"github.com/SharminSirajudeen/nova/pkg/models"
)

// decompositionPrompt asks the reasoning lead to break a brief into sub-tasks.
const decompositionPrompt = `Break this project brief into sub-tasks for a team of specialists.

Project brief:
%s

Return ONLY a JSON array with this structure (no other text):
[
  {
    "title": "Short sub-task title",
    "description": "What the specialist must deliver",
    "role": "reasoning|coding|creative|universal",
    "depends_on": ["title of a prerequisite sub-task"],
    "optional": false
  }
]

Roles:
- reasoning: strategy, architecture, planning, analysis
- coding: implementation, APIs, databases, tests
- creative: design, UI/UX, copy, documentation
- universal: anything else

Guidelines:
- Only add dependencies when one sub-task needs another's output
- Use an empty array [] for depends_on when there are none
- Mark nice-to-have work "optional": true`

// Classifier maps free text to a role for sub-tasks with no usable role.
type Classifier interface {
	Classify(text string) models.Role
}

// ClassifierFunc adapts a function to Classifier.
type ClassifierFunc func(text string) models.Role

// Classify implements Classifier.
func (f ClassifierFunc) Classify(text string) models.Role { return f(text) }

type decomposedSubTask struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Role        string            `json:"role"`
	DependsOn   []json.RawMessage `json:"depends_on"`
	Optional    bool              `json:"optional"`
}

var listItem = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+(.+)$`)

// Format names the shape a decomposition response was parsed from.
type Format string

const (
	FormatJSON   Format = "json"
	FormatList   Format = "list"
	FormatSingle Format = "single"
)

// ParseDecomposition turns a model response into sub-tasks. It tries a JSON
// array first, then a numbered or bulleted list, then falls back to a single
// sub-task carrying the whole brief. Personas are left for the caller to assign.
// The returned error explains why the JSON form was rejected, if it was.
func ParseDecomposition(response, brief string, classify Classifier) ([]models.SubTask, Format, error) {
	subtasks, err := parseJSON(response, classify)
	if err == nil {
		return subtasks, FormatJSON, nil
	}
	if subtasks := parseList(response, classify); len(subtasks) > 0 {
		return subtasks, FormatList, err
	}
	return []models.SubTask{{
		Index:       0,
		Title:       ProjectName(brief),
		Description: strings.TrimSpace(brief),
		Role:        classify.Classify(brief),
		Status:      models.SubTaskPending,
	}}, FormatSingle, err
}

func parseJSON(response string, classify Classifier) ([]models.SubTask, error) {
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response (%d chars)", len(response))
	}

	var decomposed []decomposedSubTask
	if err := json.Unmarshal([]byte(response[start:end+1]), &decomposed); err != nil {
		return nil, fmt.Errorf("unmarshal decomposition: %w", err)
	}
	if len(decomposed) == 0 {
		return nil, fmt.Errorf("empty sub-task list returned")
	}

	byTitle := make(map[string]int, len(decomposed))
	subtasks := make([]models.SubTask, len(decomposed))
	for i, d := range decomposed {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = fmt.Sprintf("Sub-task %d", i+1)
		}
		byTitle[strings.ToLower(title)] = i
		subtasks[i] = models.SubTask{
			Index:       i,
			Title:       title,
			Description: strings.TrimSpace(d.Description),
			Role:        roleFor(d.Role, title+" "+d.Description, classify),
			Optional:    d.Optional,
			Status:      models.SubTaskPending,
		}
	}

	for i, d := range decomposed {
		for _, raw := range d.DependsOn {
			dep, err := resolveDependency(raw, byTitle, len(decomposed))
			if err != nil {
				return nil, fmt.Errorf("sub-task %q: %w", subtasks[i].Title, err)
			}
			if !containsInt(subtasks[i].DependsOn, dep) {
				subtasks[i].DependsOn = append(subtasks[i].DependsOn, dep)
			}
		}
	}
	return subtasks, nil
}

// resolveDependency accepts a title or a zero-based index.
func resolveDependency(raw json.RawMessage, byTitle map[string]int, n int) (int, error) {
	var idx int
	if err := json.Unmarshal(raw, &idx); err == nil {
		if idx < 0 || idx >= n {
			return 0, fmt.Errorf("dependency index %d out of range", idx)
		}
		return idx, nil
	}
	var title string
	if err := json.Unmarshal(raw, &title); err != nil {
		return 0, fmt.Errorf("dependency %s is neither a title nor an index", string(raw))
	}
	if i, ok := byTitle[strings.ToLower(strings.TrimSpace(title))]; ok {
		return i, nil
	}
	if i, err := strconv.Atoi(strings.TrimSpace(title)); err == nil && i >= 0 && i < n {
		return i, nil
	}
	return 0, fmt.Errorf("unknown dependency %q", title)
}

func parseList(response string, classify Classifier) []models.SubTask {
	var subtasks []models.SubTask
	for _, line := range strings.Split(response, "\n") {
		m := listItem.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		text := strings.TrimSpace(m[1])
		title, desc, _ := strings.Cut(text, ": ")
		title = strings.Trim(title, "*_ ")
		if title == "" {
			continue
		}
		subtasks = append(subtasks, models.SubTask{
			Index:       len(subtasks),
			Title:       title,
			Description: strings.TrimSpace(desc),
			Role:        classify.Classify(text),
			Status:      models.SubTaskPending,
		})
	}
	return subtasks
}

func roleFor(s, text string, classify Classifier) models.Role {
	if role, ok := models.ParseRole(s); ok {
		return role
	}
	return classify.Classify(text)
}

// ProjectName uses the first quoted span in the brief, or else the first five
// words in title case followed by "Project".
func ProjectName(brief string) string {
	if start := strings.Index(brief, `"`); start >= 0 {
		if end := strings.Index(brief[start+1:], `"`); end > 0 {
			return brief[start+1 : start+1+end]
		}
	}
	words := strings.Fields(brief)
	if len(words) > 5 {
		words = words[:5]
	}
	for i, w := range words {
		words[i] = titleWord(w)
	}
	return strings.TrimSpace(strings.Join(words, " ") + " Project")
}

func titleWord(w string) string {
	runes := []rune(strings.ToLower(w))
	for i, r := range runes {
		if unicode.IsLetter(r) {
			runes[i] = unicode.ToUpper(r)
			break
		}
	}
	return string(runes)
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
