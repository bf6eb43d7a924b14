package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/gitsleuth-cli/internal/classifier"
)

var (
	trainData         string
	trainOutput       string
	trainEpochs       int
	trainLearningRate float64
	trainTestFraction float64
	trainSeed         int64
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the snippet classification model",
	Long: `Fits a logistic-regression model on labelled snippets and writes it as
JSON. Point classifier.model_path at the result to use it during scans.

The CSV needs either Phrase,Label[,Path] columns or RealPassword,Placeholder
columns (two samples per row).`,
	Args: cobra.NoArgs,
	RunE: runTrain,
}

func init() {
	defaults := classifier.DefaultTrainOptions()
	flags := trainCmd.Flags()
	flags.StringVarP(&trainData, "data", "d", "", "labelled CSV file")
	flags.StringVarP(&trainOutput, "output", "o", "model.json", "where to write the model")
	flags.IntVar(&trainEpochs, "epochs", defaults.Epochs, "passes over the training set")
	flags.Float64Var(&trainLearningRate, "learning-rate", defaults.LearningRate, "gradient descent step size")
	flags.Float64Var(&trainTestFraction, "test-fraction", defaults.TestFraction, "share of samples held out for accuracy")
	flags.Int64Var(&trainSeed, "seed", defaults.Seed, "shuffle seed")
	_ = trainCmd.MarkFlagRequired("data")
	rootCmd.AddCommand(trainCmd)
}

func runTrain(cmd *cobra.Command, _ []string) error {
	f, err := os.Open(trainData)
	if err != nil {
		return fmt.Errorf("opening training data: %w", err)
	}
	defer f.Close()

	samples, err := classifier.LoadSamples(f)
	if err != nil {
		return err
	}

	model, report, err := classifier.Train(samples, classifier.TrainOptions{
		LearningRate: trainLearningRate,
		Epochs:       trainEpochs,
		TestFraction: trainTestFraction,
		Seed:         trainSeed,
	})
	if err != nil {
		return err
	}

	if err := model.Save(trainOutput); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Trained on %d samples, tested on %d\n", report.TrainSize, report.TestSize)
	fmt.Fprintf(out, "Held-out accuracy: %.1f%%\n", report.Accuracy*100)
	fmt.Fprintf(out, "Model written to %s\n", trainOutput)
	return nil
}
