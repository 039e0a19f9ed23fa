package router

// Route is a topic with reference utterances. A query is labeled with the
// route of its closest reference, provided the distance clears the route's
// own threshold.
type Route struct {
	Name       string
	References []string
	Metadata   map[string]string
	// Threshold is the max cosine distance for this route to claim a
	// query. Lower = harder to match.
	Threshold float64
}

// DefaultRoutes is the stock route set. References mix en-US and pt-BR so
// both input locales classify robustly.
func DefaultRoutes() []Route {
	return []Route{
		{
			Name: "technology",
			References: []string{
				"latest advancements in AI",
				"newest gadgets",
				"what's trending in tech",
				"quantum computing news",
				"is 5G available everywhere",
				"explain edge computing",
				"tendências em tecnologia",
				"o que é computação de borda",
			},
			Metadata:  map[string]string{"category": "tech"},
			Threshold: 0.72,
		},
		{
			Name: "sports",
			References: []string{
				"who won the game last night",
				"upcoming sports events",
				"latest sports news",
				"results for NBA and NFL",
				"Olympics schedule",
				"jogo do corinthians",
				"tabela do brasileirão",
			},
			Metadata:  map[string]string{"category": "sports"},
			Threshold: 0.72,
		},
		{
			Name: "entertainment",
			References: []string{
				"top movies right now",
				"who won the Oscars",
				"celebrity news",
				"upcoming TV shows and films",
				"trending series on Netflix",
				"novidades no entretenimento",
			},
			Metadata:  map[string]string{"category": "entertainment"},
			Threshold: 0.70,
		},
		{
			Name: "finance",
			References: []string{
				"latest stock market trends",
				"bitcoin price update",
				"how to invest in ETFs",
				"interest rate changes",
				"best budgeting tips",
				"explain inflation",
				"como investir em renda fixa",
				"taxa selic",
				"CDI vs poupança",
			},
			Metadata:  map[string]string{"category": "finance"},
			Threshold: 0.73,
		},
		{
			Name: "health",
			References: []string{
				"tips for mental health",
				"how to lose weight safely",
				"flu and covid symptoms",
				"healthy diets and routines",
				"benefits of meditation",
				"alimentação saudável",
				"sintomas de gripe",
			},
			Metadata:  map[string]string{"category": "health"},
			Threshold: 0.74,
		},
		{
			Name: "travel",
			References: []string{
				"top destinations for 2025",
				"is Japan open for travel",
				"budget travel tips",
				"visa requirements for US",
				"backpacking Europe",
				"dicas de viagem baratas",
				"preciso de visto para os EUA",
			},
			Metadata:  map[string]string{"category": "travel"},
			Threshold: 0.72,
		},
		{
			Name: "education",
			References: []string{
				"best online learning platforms",
				"AI in classrooms",
				"how to learn coding",
				"top universities in Europe",
				"study tips for students",
				"plataformas de estudo online",
				"como aprender programação",
			},
			Metadata:  map[string]string{"category": "education"},
			Threshold: 0.73,
		},
		{
			Name: "food",
			References: []string{
				"best recipes for dinner",
				"easy vegan meals",
				"restaurants near me",
				"how to cook steak properly",
				"healthy snack ideas",
				"restaurantes perto de mim",
				"receitas fáceis",
			},
			Metadata:  map[string]string{"category": "food"},
			Threshold: 0.71,
		},
		{
			Name: "coding",
			References: []string{
				"how to write python code",
				"debug this error",
				"explain this algorithm",
				"help with unit tests",
				"melhor prática em API design",
				"escreva uma função em javascript",
			},
			Metadata:  map[string]string{"category": "dev"},
			Threshold: 0.73,
		},
		{
			Name: "devops",
			References: []string{
				"docker compose not starting",
				"kubernetes pod failing",
				"ci/cd pipeline tips",
				"observability best practices",
				"infra as code examples",
				"helm chart issues",
			},
			Metadata:  map[string]string{"category": "devops"},
			Threshold: 0.74,
		},
		{
			Name: "documentation",
			References: []string{
				"summarize this doc",
				"extract key points from PDF",
				"create a knowledge base article",
				"improve clarity of this README",
				"documentação do projeto",
			},
			Metadata:  map[string]string{"category": "docs"},
			Threshold: 0.72,
		},
		{
			Name: "customer_support",
			References: []string{
				"how to respond to a complaint",
				"refund policy explanation",
				"triage steps for a ticket",
				"escalation guidelines",
				"roteiro de atendimento",
			},
			Metadata:  map[string]string{"category": "support"},
			Threshold: 0.73,
		},
		{
			Name: "hr",
			References: []string{
				"vacation policy",
				"how to request leave",
				"benefits overview",
				"onboarding checklist",
				"folga e férias",
			},
			Metadata:  map[string]string{"category": "hr"},
			Threshold: 0.73,
		},
		{
			Name: "legal",
			References: []string{
				"nda template",
				"contract review checklist",
				"privacy policy summary",
				"intellectual property basics",
				"dados pessoais e LGPD",
			},
			Metadata:  map[string]string{"category": "legal"},
			Threshold: 0.76,
		},
		{
			Name: "shopping",
			References: []string{
				"best laptops under 1000",
				"compare these products",
				"which phone should I buy",
				"dicas para economizar",
				"qual o melhor custo-benefício",
			},
			Metadata:  map[string]string{"category": "shopping"},
			Threshold: 0.72,
		},
		{
			Name: "math",
			References: []string{
				"solve this math problem",
				"calculate percentage",
				"explain statistics concept",
				"derivative of a function",
				"probability basics",
			},
			Metadata:  map[string]string{"category": "math"},
			Threshold: 0.72,
		},
		{
			Name: "general",
			References: []string{
				"how are you",
				"tell me a joke",
				"what can you do",
				"converse comigo",
				"small talk",
			},
			Metadata:  map[string]string{"category": "general"},
			Threshold: 0.70,
		},
		{
			Name: "personal",
			References: []string{
				"what is my name",
				"where do I work",
				"my preferences",
				"minhas preferências",
			},
			Metadata:  map[string]string{"category": "personal-stuff"},
			Threshold: 0.71,
		},
	}
}
