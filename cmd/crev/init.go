package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/crev/internal/config"
	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
)

func initCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Generate a crev configuration file",
		Long: `Generate a documented crev configuration file with sensible defaults.

By default, creates crev.yaml in the current directory with full
documentation. Use --interactive for a guided setup wizard.

Examples:
  # Create crev.yaml in current directory
  crev init

  # Custom output path
  crev init --config custom.yaml

  # Overwrite existing file
  crev init --force

  # Generate smaller config with essential options only
  crev init --minimal

  # Interactive setup wizard
  crev init --interactive
  crev init -i`,
		RunE: runInit,
	}

	cmd.Flags().StringP("config", "c", "crev.yaml",
		"Output path for the config file")
	cmd.Flags().BoolP("force", "f", false,
		"Overwrite existing config file")
	cmd.Flags().Bool("minimal", false,
		"Generate minimal config with essential options only")
	cmd.Flags().BoolP("interactive", "i", false,
		"Interactive setup wizard")

	return cmd
}

func runInit(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	force, _ := cmd.Flags().GetBool("force")
	minimal, _ := cmd.Flags().GetBool("minimal")
	interactive, _ := cmd.Flags().GetBool("interactive")

	vendor := config.DefaultAIVendor
	strictness := config.StrictnessStandard

	if interactive {
		var err error
		var interactiveConfigPath string
		vendor, strictness, interactiveConfigPath, err = runInteractiveSetup(configPath)
		if err != nil {
			return err
		}
		configPath = interactiveConfigPath
	}

	if !force {
		if _, err := os.Stat(configPath); err == nil {
			return fmt.Errorf("%s already exists. Use --force to overwrite", configPath)
		}
	}

	dir := filepath.Dir(configPath)
	if dir != "." && dir != "" {
		if _, err := os.Stat(dir); os.IsNotExist(err) {
			return fmt.Errorf("directory does not exist: %s", dir)
		}
	}

	var content string
	if minimal {
		content = config.GetMinimalConfigTemplate()
	} else {
		content = config.GetFullConfigTemplate(vendor, strictness)
	}

	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	displayPath := configPath
	if absPath, err := filepath.Abs(configPath); err == nil {
		displayPath = absPath
	}
	fmt.Printf("Created %s\n", displayPath)
	fmt.Println("\nRun 'crev review .' to review your project.")

	return nil
}

func runInteractiveSetup(defaultConfigPath string) (string, config.Strictness, string, error) {
	fmt.Println()
	fmt.Println("crev Configuration Setup")
	fmt.Println("========================")
	fmt.Println()

	// Completion backend selection
	vendors := []struct {
		Label       string
		Description string
		Value       string
	}{
		{"Anthropic", "Claude models via the Anthropic API", "anthropic"},
		{"OpenAI", "GPT models via the OpenAI API", "openai"},
		{"Ollama", "Local models via an Ollama server", "ollama"},
	}

	vendorTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	vendorPrompt := promptui.Select{
		Label:     "Which completion backend should reviews use?",
		Items:     vendors,
		Templates: vendorTemplates,
	}

	vendorIdx, _, err := vendorPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("vendor selection cancelled: %w", err)
	}
	selectedVendor := vendors[vendorIdx].Value

	fmt.Println()

	// Strictness selection
	strictnessLevels := []struct {
		Label       string
		Description string
		Value       config.Strictness
	}{
		{"Standard (recommended)", "Report medium severity and above", config.StrictnessStandard},
		{"Relaxed", "Report high severity and above", config.StrictnessRelaxed},
		{"Strict", "Report everything with details", config.StrictnessStrict},
	}

	strictnessTemplates := &promptui.SelectTemplates{
		Label:    "{{ . }}",
		Active:   "\U0001F449 {{ .Label | cyan }} - {{ .Description | faint }}",
		Inactive: "   {{ .Label | white }} - {{ .Description | faint }}",
		Selected: "\U00002705 {{ .Label | green }}",
	}

	strictnessPrompt := promptui.Select{
		Label:     "How strict should reviews be?",
		Items:     strictnessLevels,
		Templates: strictnessTemplates,
	}

	strictnessIdx, _, err := strictnessPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("strictness selection cancelled: %w", err)
	}
	selectedStrictness := strictnessLevels[strictnessIdx].Value

	fmt.Println()

	outputPrompt := promptui.Prompt{
		Label:   "Output file path",
		Default: defaultConfigPath,
	}

	outputPath, err := outputPrompt.Run()
	if err != nil {
		return "", "", "", fmt.Errorf("output path input cancelled: %w", err)
	}

	if outputPath == "" {
		outputPath = defaultConfigPath
	}

	fmt.Println()
	fmt.Printf("Creating %s... ", outputPath)

	return selectedVendor, selectedStrictness, outputPath, nil
}
