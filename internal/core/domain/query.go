package domain

import "strings"

// Category groups related search queries.
type Category string

// Catalog categories, in the order the catalog emits them.
const (
	CategoryCloud             Category = "cloud_credentials"
	CategoryThirdPartyAPI     Category = "third_party_api"
	CategoryOAuth             Category = "oauth_secrets"
	CategoryDatabase          Category = "database_connections"
	CategorySSH               Category = "ssh_keys"
	CategorySMTP              Category = "smtp_credentials"
	CategoryAppSecrets        Category = "application_secrets"
	CategoryInfrastructure    Category = "infrastructure_as_code"
	CategoryCICD              Category = "ci_cd_secrets"
	CategoryCommitHistory     Category = "commit_history"
	CategoryHardcodedPassword Category = "hardcoded_passwords"
	CategoryInternational     Category = "international_keywords"
	CategoryConfigFiles       Category = "config_files"
	CategoryCustom            Category = "custom"
)

// AllCategories returns the built-in categories in catalog order.
// CategoryCustom is not included; it only holds user-supplied queries.
func AllCategories() []Category {
	return []Category{
		CategoryCloud,
		CategoryThirdPartyAPI,
		CategoryOAuth,
		CategoryDatabase,
		CategorySSH,
		CategorySMTP,
		CategoryAppSecrets,
		CategoryInfrastructure,
		CategoryCICD,
		CategoryCommitHistory,
		CategoryHardcodedPassword,
		CategoryInternational,
		CategoryConfigFiles,
	}
}

// IsValid returns true if the category is recognised.
func (c Category) IsValid() bool {
	if c == CategoryCustom {
		return true
	}
	for _, known := range AllCategories() {
		if c == known {
			return true
		}
	}
	return false
}

// String returns the string representation.
func (c Category) String() string {
	return string(c)
}

// Title returns a human-readable category name.
func (c Category) Title() string {
	switch c {
	case CategoryCloud:
		return "Cloud Credentials"
	case CategoryThirdPartyAPI:
		return "Third-Party API Tokens"
	case CategoryOAuth:
		return "OAuth Secrets"
	case CategoryDatabase:
		return "Database Connection Strings"
	case CategorySSH:
		return "SSH Keys"
	case CategorySMTP:
		return "Email/SMTP Credentials"
	case CategoryAppSecrets:
		return "Application Secrets"
	case CategoryInfrastructure:
		return "Infrastructure-as-Code Secrets"
	case CategoryCICD:
		return "CI/CD Secrets"
	case CategoryCommitHistory:
		return "Commit-History Leaks"
	case CategoryHardcodedPassword:
		return "Hardcoded Passwords"
	case CategoryInternational:
		return "Internationalized Keywords"
	case CategoryConfigFiles:
		return "Configuration Files"
	case CategoryCustom:
		return "Custom"
	default:
		return strings.ReplaceAll(string(c), "_", " ")
	}
}

// SearchQuery is one code-search query with the category it belongs to.
type SearchQuery struct {
	// Category the query was generated for.
	Category Category `json:"category"`

	// Query is the full search string sent to the API, qualifiers included.
	Query string `json:"query"`

	// Description explains what the query is looking for.
	Description string `json:"description"`
}

// CategoryQueries is the ordered query list of one category.
type CategoryQueries struct {
	Category Category      `json:"category"`
	Queries  []SearchQuery `json:"queries"`
}

// Catalog is the ordered, deterministic set of queries for one run.
type Catalog struct {
	// Seed is the domain or keyword the catalog was built for. May be empty.
	Seed string `json:"seed,omitempty"`

	// Groups holds the queries per category in catalog order.
	Groups []CategoryQueries `json:"groups"`
}

// Queries flattens the catalog into a single ordered list.
func (c Catalog) Queries() []SearchQuery {
	var out []SearchQuery
	for _, g := range c.Groups {
		out = append(out, g.Queries...)
	}
	return out
}

// Len returns the total number of queries.
func (c Catalog) Len() int {
	n := 0
	for _, g := range c.Groups {
		n += len(g.Queries)
	}
	return n
}

// Filter returns a catalog restricted to the given categories, keeping
// catalog order. With no categories the catalog is returned unchanged.
func (c Catalog) Filter(categories ...Category) Catalog {
	if len(categories) == 0 {
		return c
	}
	want := make(map[Category]bool, len(categories))
	for _, cat := range categories {
		want[cat] = true
	}

	out := Catalog{Seed: c.Seed}
	for _, g := range c.Groups {
		if want[g.Category] {
			out.Groups = append(out.Groups, g)
		}
	}
	return out
}

// Append adds queries to the group of their category, creating it at the end
// if it does not exist yet.
func (c *Catalog) Append(queries ...SearchQuery) {
	for _, q := range queries {
		idx := -1
		for i := range c.Groups {
			if c.Groups[i].Category == q.Category {
				idx = i
				break
			}
		}
		if idx < 0 {
			c.Groups = append(c.Groups, CategoryQueries{Category: q.Category})
			idx = len(c.Groups) - 1
		}
		c.Groups[idx].Queries = append(c.Groups[idx].Queries, q)
	}
}
