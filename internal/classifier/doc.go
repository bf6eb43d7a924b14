// Package classifier decides whether a snippet of code likely contains a
// real secret.
//
// Classification has two layers:
//
//   - Filters: deterministic rules that reject template placeholders,
//     allow-listed lines and assignments whose value is empty, a known
//     placeholder, numeric or low in entropy.
//   - Scoring: a driven.Scorer maps the snippet's FeatureVector to a score.
//     ThresholdScorer compares Shannon entropy to a fixed threshold;
//     LogisticScorer applies a trained logistic-regression Model.
//
// An optional driven.SecretScreen (GitleaksScreen) attaches the id of a
// matching detection rule to each candidate.
package classifier
