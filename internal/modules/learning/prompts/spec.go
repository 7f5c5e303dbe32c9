package prompts

import (
	"fmt"
	"strings"
	"sync"
	"text/template"
)

// Spec is a registered prompt: system and user text/templates rendered over Input,
// plus the JSON schema the response is expected to follow.
type Spec struct {
	Name       PromptName
	Version    int
	SchemaName string
	Schema     func() map[string]any
	System     string
	User       string
}

// Prompt is a fully rendered request for the generation client.
type Prompt struct {
	Name       PromptName
	Version    int
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

type compiled struct {
	spec   Spec
	system *template.Template
	user   *template.Template
}

var (
	regMu    sync.RWMutex
	registry = map[PromptName]compiled{}
	initOnce sync.Once
)

// RegisterSpec parses and stores a spec. Template errors are programming errors and panic.
func RegisterSpec(s Spec) {
	c := compiled{
		spec:   s,
		system: template.Must(template.New(string(s.Name) + ".system").Option("missingkey=zero").Parse(strings.TrimSpace(s.System))),
		user:   template.Must(template.New(string(s.Name) + ".user").Option("missingkey=zero").Parse(strings.TrimSpace(s.User))),
	}
	regMu.Lock()
	registry[s.Name] = c
	regMu.Unlock()
}

func Build(name PromptName, in Input) (Prompt, error) {
	initOnce.Do(RegisterAll)

	regMu.RLock()
	c, ok := registry[name]
	regMu.RUnlock()
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt %q", name)
	}

	var sys, usr strings.Builder
	if err := c.system.Execute(&sys, in); err != nil {
		return Prompt{}, fmt.Errorf("render %s system: %w", name, err)
	}
	if err := c.user.Execute(&usr, in); err != nil {
		return Prompt{}, fmt.Errorf("render %s user: %w", name, err)
	}

	p := Prompt{
		Name:       name,
		Version:    c.spec.Version,
		System:     sys.String(),
		User:       usr.String(),
		SchemaName: c.spec.SchemaName,
	}
	if c.spec.Schema != nil {
		p.Schema = c.spec.Schema()
	}
	return p, nil
}

func mustBuild(name PromptName, in Input) Prompt {
	p, err := Build(name, in)
	if err != nil {
		panic(err)
	}
	return p
}

// Track renders the track-planning prompt.
func Track(in Input) Prompt { return mustBuild(PromptTrack, in) }

// Assignment renders the single-task prompt.
func Assignment(in Input) Prompt { return mustBuild(PromptAssignment, in) }

// Feedback renders the submission review prompt.
func Feedback(in Input) Prompt { return mustBuild(PromptFeedback, in) }

// Text joins system and user parts for providers without a system channel.
func (p Prompt) Text() string {
	if p.System == "" {
		return p.User
	}
	return p.System + "\n\n" + p.User
}
