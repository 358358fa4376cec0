package persona

// Influence is a well-known thinker whose style a persona channels.
type Influence struct {
	Name          string   `yaml:"name"`
	ThinkingStyle string   `yaml:"thinking_style"`
	Principles    []string `yaml:"principles"`
}

// DefaultInfluences is the built-in influence table keyed by influence key.
func DefaultInfluences() map[string]Influence {
	return map[string]Influence{
		"warren_buffett": {
			Name:          "Warren Buffett",
			ThinkingStyle: "Value-focused, long-term, analytical",
			Principles:    []string{"Circle of competence", "Be fearful when others are greedy", "Time is the friend of the wonderful business"},
		},
		"steve_jobs": {
			Name:          "Steve Jobs",
			ThinkingStyle: "Intuitive, perfectionist, user-centric",
			Principles:    []string{"Think Different", "Simplicity is the ultimate sophistication", "Focus means saying no"},
		},
		"linus_torvalds": {
			Name:          "Linus Torvalds",
			ThinkingStyle: "Pragmatic, efficient, no-nonsense",
			Principles:    []string{"Release early, release often", "Given enough eyeballs, all bugs are shallow", "Good taste in code"},
		},
		"jony_ive": {
			Name:          "Jony Ive",
			ThinkingStyle: "Aesthetic, emotional, human-centered",
			Principles:    []string{"Simplicity", "Honest materials", "Invisible technology"},
		},
		"elon_musk": {
			Name:          "Elon Musk",
			ThinkingStyle: "First principles, ambitious, rapid iteration",
			Principles:    []string{"First principles thinking", "Make the impossible possible", "Fail fast, learn faster"},
		},
		"jeff_bezos": {
			Name:          "Jeff Bezos",
			ThinkingStyle: "Customer-backward, long-term, data-driven",
			Principles:    []string{"Customer obsession", "Invent and simplify", "Day 1 mentality"},
		},
		"satya_nadella": {
			Name:          "Satya Nadella",
			ThinkingStyle: "Empathetic, growth mindset, collaborative",
			Principles:    []string{"Growth mindset", "Empower every person", "Partner with everyone"},
		},
		"john_carmack": {
			Name:          "John Carmack",
			ThinkingStyle: "Mathematical, optimization-focused, deep technical",
			Principles:    []string{"Performance is king", "Elegant algorithms", "Push hardware limits"},
		},
		"jeff_dean": {
			Name:          "Jeff Dean",
			ThinkingStyle: "Scale-oriented, systematic, research-driven",
			Principles:    []string{"Design for scale", "Measure and optimize", "Share knowledge"},
		},
		"dan_abramov": {
			Name:          "Dan Abramov",
			ThinkingStyle: "Developer-empathy focused, iterative, educational",
			Principles:    []string{"Developer happiness", "Gradual adoption", "Learn in public"},
		},
		"kent_beck": {
			Name:          "Kent Beck",
			ThinkingStyle: "Human-centered development, simplicity, feedback loops",
			Principles:    []string{"Extreme Programming", "Test-driven development", "Simplicity"},
		},
		"geoffrey_hinton": {
			Name:          "Geoffrey Hinton",
			ThinkingStyle: "Research-driven, intuitive, breakthrough-focused",
			Principles:    []string{"Neural networks can learn anything", "Backpropagation revolution", "Deep understanding"},
		},
		"andrej_karpathy": {
			Name:          "Andrej Karpathy",
			ThinkingStyle: "Engineering-practical AI, educational, systematic",
			Principles:    []string{"AI for everyone", "Build to understand", "Practical applications"},
		},
		"dieter_rams": {
			Name:          "Dieter Rams",
			ThinkingStyle: "Minimalist, functional, timeless",
			Principles:    []string{"Good design is innovative", "Good design is aesthetic", "Good design is as little design as possible"},
		},
		"paul_rand": {
			Name:          "Paul Rand",
			ThinkingStyle: "Symbolic, meaningful, timeless",
			Principles:    []string{"Simplicity", "Appropriateness", "Wit and humor"},
		},
		"julie_zhuo": {
			Name:          "Julie Zhuo",
			ThinkingStyle: "User-empathy driven, systematic, growth-oriented",
			Principles:    []string{"User-centered design", "Team effectiveness", "Data-informed decisions"},
		},
		"kelsey_hightower": {
			Name:          "Kelsey Hightower",
			ThinkingStyle: "Automation-first, reliability-focused, practical",
			Principles:    []string{"Infrastructure as code", "Automation over manual work", "Reliability engineering"},
		},
		"adrian_cockcroft": {
			Name:          "Adrian Cockcroft",
			ThinkingStyle: "Distributed systems, resilience-focused, evolutionary",
			Principles:    []string{"Design for failure", "Microservices architecture", "Chaos engineering"},
		},
		"james_bach": {
			Name:          "James Bach",
			ThinkingStyle: "Exploratory, skeptical, human-centered testing",
			Principles:    []string{"Context-driven testing", "Exploratory testing", "Thinking skills"},
		},
		"lisa_crispin": {
			Name:          "Lisa Crispin",
			ThinkingStyle: "Collaborative, quality-focused, team-integrated",
			Principles:    []string{"Whole team approach to quality", "Continuous testing", "Agile testing quadrants"},
		},
	}
}
