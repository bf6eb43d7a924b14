// Package catalog builds the ordered set of code-search queries for a seed.
//
// The catalog is a pure function of the seed: the same seed always yields
// the same queries in the same order. Each query is a qualifier (filename:,
// extension:, language:, path:), search terms, NOT exclusions, and the
// quoted seed.
package catalog

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/gitsleuth-cli/internal/core/domain"
)

// MaxQueryLength is the longest query the code-search API accepts.
const MaxQueryLength = 256

// PlaceholderExclusions are appended to templates that commonly match
// documentation rather than live configuration.
var PlaceholderExclusions = []string{"example", "test", "sample", "dummy", "placeholder"}

type template struct {
	qualifier   string
	terms       string
	exclude     []string
	noisy       bool
	description string
}

func (t template) render(seed string) string {
	parts := make([]string, 0, 4+len(t.exclude)+len(PlaceholderExclusions))
	if t.qualifier != "" {
		parts = append(parts, t.qualifier)
	}
	if t.terms != "" {
		parts = append(parts, t.terms)
	}
	for _, ex := range t.exclude {
		parts = append(parts, "NOT "+ex)
	}
	if t.noisy {
		for _, ex := range PlaceholderExclusions {
			parts = append(parts, "NOT "+ex)
		}
	}
	if seed != "" {
		parts = append(parts, `"`+seed+`"`)
	}
	return strings.Join(parts, " ")
}

type group struct {
	category  domain.Category
	templates []template
}

var groups = []group{
	{domain.CategoryCloud, []template{
		{qualifier: "filename:credentials", terms: "aws_access_key_id", description: "AWS shared credentials file"},
		{qualifier: "filename:.s3cfg", description: "S3cmd configuration with access keys"},
		{qualifier: "path:.aws filename:config", description: "AWS CLI configuration"},
		{qualifier: "extension:env", terms: "AWS_SECRET_ACCESS_KEY", noisy: true, description: "AWS secret key in environment file"},
		{terms: `"DefaultEndpointsProtocol" "AccountKey="`, description: "Azure storage connection string"},
		{qualifier: "extension:json", terms: `"private_key_id" "service_account"`, description: "GCP service account key"},
	}},
	{domain.CategoryThirdPartyAPI, []template{
		{qualifier: "language:shell", terms: "HEROKU_API_KEY", description: "Heroku API key in shell scripts"},
		{qualifier: "language:json", terms: "HEROKU_API_KEY", description: "Heroku API key in JSON"},
		{terms: "api.forecast.io", description: "Forecast.io API key"},
		{terms: "xoxp OR xoxb", description: "Slack user and bot tokens"},
		{terms: `"sk_live_"`, description: "Stripe live secret key"},
		{terms: "SENDGRID_API_KEY", noisy: true, description: "SendGrid API key"},
		{qualifier: "extension:env", terms: "API_KEY", noisy: true, description: "Generic API key in environment file"},
	}},
	{domain.CategoryOAuth, []template{
		{qualifier: "extension:json", terms: `"client_secret"`, noisy: true, description: "OAuth client secret in JSON"},
		{terms: "GITHUB_CLIENT_SECRET", noisy: true, description: "GitHub OAuth app secret"},
		{terms: "GOOGLE_CLIENT_SECRET", noisy: true, description: "Google OAuth client secret"},
		{terms: `"refresh_token" "client_id"`, noisy: true, description: "Stored OAuth refresh token"},
	}},
	{domain.CategoryDatabase, []template{
		{qualifier: "filename:.env", terms: "DB_PASSWORD", exclude: []string{"current"}, description: "Database password in .env"},
		{qualifier: "extension:sql", terms: "mysql dump password", description: "MySQL dump with credentials"},
		{terms: `"mongodb+srv://"`, noisy: true, description: "MongoDB connection string"},
		{terms: `"postgres://"`, qualifier: "extension:yml", noisy: true, description: "PostgreSQL connection URL"},
		{terms: `"jdbc:mysql" password`, noisy: true, description: "JDBC MySQL URL with password"},
	}},
	{domain.CategorySSH, []template{
		{qualifier: "extension:pem", terms: "private", description: "PEM private key"},
		{qualifier: "extension:ppk", terms: "private", description: "PuTTY private key"},
		{terms: "filename:id_rsa OR filename:id_dsa", description: "OpenSSH private key file"},
		{terms: `"BEGIN OPENSSH PRIVATE KEY"`, description: "Inline OpenSSH private key"},
	}},
	{domain.CategorySMTP, []template{
		{terms: "SMTP_PASSWORD", noisy: true, description: "SMTP password"},
		{qualifier: "filename:.env", terms: "MAIL_PASSWORD", noisy: true, description: "Mail password in .env"},
		{terms: `"smtp.gmail.com" password`, noisy: true, description: "Gmail SMTP credentials"},
	}},
	{domain.CategoryAppSecrets, []template{
		{terms: "SECRET_KEY_BASE", noisy: true, description: "Rails secret key base"},
		{terms: "DJANGO_SECRET_KEY", noisy: true, description: "Django secret key"},
		{terms: "JWT_SECRET", noisy: true, description: "JWT signing secret"},
		{qualifier: "filename:.env", terms: "APP_KEY", noisy: true, description: "Laravel application key"},
		{terms: "API_BASE_URL token", description: "API base URL next to a token"},
		{qualifier: "filename:recovery", terms: "codes", description: "Two-factor recovery codes"},
	}},
	{domain.CategoryInfrastructure, []template{
		{qualifier: "filename:main.tf", terms: "aws_access_key_id", description: "Terraform provider with inline AWS key"},
		{qualifier: "extension:tfvars", terms: "password", noisy: true, description: "Terraform variables with password"},
		{qualifier: "filename:terraform.tfstate", terms: "secret", description: "Terraform state with secrets"},
		{qualifier: "filename:values.yaml", terms: "password", noisy: true, description: "Helm values with password"},
	}},
	{domain.CategoryCICD, []template{
		{qualifier: "filename:azure-pipelines.yml", terms: "password", description: "Azure Pipelines definition with password"},
		{qualifier: "path:.github/workflows", terms: "password", noisy: true, description: "GitHub Actions workflow with password"},
		{qualifier: "filename:.gitlab-ci.yml", terms: "password", noisy: true, description: "GitLab CI definition with password"},
		{qualifier: "filename:.travis.yml", terms: "password", noisy: true, description: "Travis CI definition with password"},
		{qualifier: "filename:Jenkinsfile", terms: "credentials", noisy: true, description: "Jenkins pipeline credentials"},
	}},
	{domain.CategoryCommitHistory, []template{
		{qualifier: "filename:.bash_history", terms: "password", description: "Shell history with password"},
		{qualifier: "filename:.mysql_history", description: "MySQL client history"},
		{qualifier: "filename:debug.log", terms: "password", description: "Debug log with password"},
		{terms: `"remove before production"`, description: "Secrets marked for removal"},
	}},
	{domain.CategoryHardcodedPassword, []template{
		{terms: `password "admin"`, description: "Hardcoded admin password"},
		{terms: `"pre-shared key"`, exclude: []string{"example", "placeholder"}, description: "Pre-shared key"},
		{qualifier: "language:python", terms: `"db_password ="`, noisy: true, description: "Python database password assignment"},
		{qualifier: "language:java", terms: `"setPassword("`, noisy: true, description: "Java password setter call"},
	}},
	{domain.CategoryInternational, []template{
		{terms: "contraseña", noisy: true, description: "Spanish password keyword"},
		{terms: "passwort", noisy: true, description: "German password keyword"},
		{terms: "mot_de_passe", noisy: true, description: "French password keyword"},
		{terms: "senha", noisy: true, description: "Portuguese password keyword"},
		{terms: "пароль", description: "Russian password keyword"},
		{terms: "パスワード", description: "Japanese password keyword"},
		{terms: "密码", description: "Chinese password keyword"},
	}},
	{domain.CategoryConfigFiles, []template{
		{qualifier: "filename:.npmrc", terms: "_auth", description: "npm registry auth token"},
		{qualifier: "filename:.dockercfg", terms: "auth", description: "Docker registry auth"},
		{qualifier: "filename:wp-config.php", description: "WordPress configuration"},
		{qualifier: "filename:.htpasswd", description: "Apache password file"},
		{qualifier: "filename:.git-credentials", description: "Stored git credentials"},
		{qualifier: "filename:.env", terms: "DB_USERNAME", exclude: []string{"homestead"}, description: "Database user in .env"},
		{qualifier: "filename:config.json", exclude: []string{"encrypted", "secure"}, description: "Unencrypted JSON configuration"},
	}},
}

// Build returns the full catalog for seed in a fixed order.
// An empty seed yields unscoped queries.
func Build(seed string) domain.Catalog {
	seed = NormalizeSeed(seed)
	c := domain.Catalog{Seed: seed}
	for _, g := range groups {
		cq := domain.CategoryQueries{Category: g.category}
		for _, t := range g.templates {
			cq.Queries = append(cq.Queries, domain.SearchQuery{
				Category:    g.category,
				Query:       t.render(seed),
				Description: t.description,
			})
		}
		c.Groups = append(c.Groups, cq)
	}
	return c
}

// Custom wraps a user-supplied query, scoping it to seed like the
// built-in templates.
func Custom(query, seed string) domain.SearchQuery {
	query = strings.Join(strings.Fields(query), " ")
	t := template{terms: query}
	return domain.SearchQuery{
		Category:    domain.CategoryCustom,
		Query:       t.render(NormalizeSeed(seed)),
		Description: "Custom query",
	}
}

// NormalizeSeed trims the seed, drops double quotes and collapses spaces.
func NormalizeSeed(seed string) string {
	seed = strings.ReplaceAll(seed, `"`, "")
	return strings.Join(strings.Fields(seed), " ")
}

// ParseCategories maps names to categories, rejecting unknown ones.
func ParseCategories(names []string) ([]domain.Category, error) {
	out := make([]domain.Category, 0, len(names))
	for _, n := range names {
		c := domain.Category(strings.TrimSpace(n))
		if !c.IsValid() {
			return nil, fmt.Errorf("%w: unknown category %q", domain.ErrInvalidInput, n)
		}
		out = append(out, c)
	}
	return out, nil
}

// Validate checks every query can be sent as-is: non-empty, balanced
// quotes and within the API's length limit.
func Validate(c domain.Catalog) error {
	if c.Len() == 0 {
		return fmt.Errorf("%w: catalog is empty", domain.ErrInvalidQuery)
	}
	for _, q := range c.Queries() {
		if err := ValidateQuery(q.Query); err != nil {
			return err
		}
	}
	return nil
}

// ValidateQuery checks a single query string.
func ValidateQuery(q string) error {
	switch {
	case strings.TrimSpace(q) == "":
		return fmt.Errorf("%w: empty query", domain.ErrInvalidQuery)
	case strings.Count(q, `"`)%2 != 0:
		return fmt.Errorf("%w: unbalanced quotes in %q", domain.ErrInvalidQuery, q)
	case len(q) > MaxQueryLength:
		return fmt.Errorf("%w: query longer than %d bytes: %q", domain.ErrInvalidQuery, MaxQueryLength, q)
	}
	return nil
}

// Compose builds the catalog for one run: the built-in queries of the named
// categories plus any custom queries. With custom queries and no categories
// only the custom queries run; with neither, the whole catalog does.
func Compose(seed string, categories []string, custom ...string) (domain.Catalog, error) {
	cats, err := ParseCategories(categories)
	if err != nil {
		return domain.Catalog{}, err
	}

	var c domain.Catalog
	switch {
	case len(cats) > 0:
		c = Build(seed).Filter(cats...)
	case len(custom) > 0:
		c = domain.Catalog{Seed: NormalizeSeed(seed)}
	default:
		c = Build(seed)
	}

	for _, q := range custom {
		if strings.TrimSpace(q) == "" {
			continue
		}
		c.Append(Custom(q, seed))
	}

	if err := Validate(c); err != nil {
		return domain.Catalog{}, err
	}
	return c, nil
}
