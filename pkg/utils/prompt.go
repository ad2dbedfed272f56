package utils

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"

	"github.com/picogrid/legion-battalions/pkg/simulation"
)

// EnvPrefix prefixes the environment overrides of simulation parameters
const EnvPrefix = "BATTALION_"

// SkipPromptsEnv makes PromptForParameters resolve from the environment and defaults only
const SkipPromptsEnv = EnvPrefix + "SKIP_PROMPTS"

// ParamEnvKey returns the environment variable overriding a parameter
func ParamEnvKey(name string) string {
	return EnvPrefix + strings.ToUpper(name)
}

// PromptsDisabled reports whether prompts are switched off for CI and automation
func PromptsDisabled() bool {
	return os.Getenv(SkipPromptsEnv) == "true"
}

// PromptForParameters prompts the user for simulation parameters
func PromptForParameters(params []simulation.Parameter) (map[string]interface{}, error) {
	result := make(map[string]interface{})

	for _, param := range params {
		value, err := promptForParameter(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		result[param.Name] = value
	}

	return result, nil
}

// ParametersFromEnv resolves every parameter from its environment override,
// falling back to the declared default
func ParametersFromEnv(params []simulation.Parameter) (map[string]interface{}, error) {
	result := make(map[string]interface{})
	for _, param := range params {
		value, ok, err := paramFromEnv(param)
		if err != nil {
			return nil, fmt.Errorf("failed to get %s: %w", param.Name, err)
		}
		if ok {
			result[param.Name] = value
		}
	}
	return result, nil
}

func paramFromEnv(param simulation.Parameter) (interface{}, bool, error) {
	if envValue := os.Getenv(ParamEnvKey(param.Name)); envValue != "" {
		v, err := param.Parse(envValue)
		if err != nil {
			return nil, false, fmt.Errorf("%s: %w", ParamEnvKey(param.Name), err)
		}
		return v, true, nil
	}
	if param.Default != nil {
		return param.Default, true, nil
	}
	if param.Required {
		return nil, false, fmt.Errorf("required parameter %s not provided and no default available", param.Name)
	}
	return nil, false, nil
}

// promptForParameter prompts for a single parameter
func promptForParameter(param simulation.Parameter) (interface{}, error) {
	if PromptsDisabled() {
		v, _, err := paramFromEnv(param)
		return v, err
	}

	// an environment value becomes the suggested answer
	if envValue := os.Getenv(ParamEnvKey(param.Name)); envValue != "" {
		if parsed, err := param.Parse(envValue); err == nil {
			param.Default = parsed
		}
	}

	switch param.Type {
	case simulation.TypeInteger, simulation.TypeFloat:
		return promptNumber(param)
	case simulation.TypeString:
		return promptString(param)
	case simulation.TypeBoolean:
		return promptBoolean(param)
	case simulation.TypeDuration:
		return promptDuration(param)
	default:
		return nil, fmt.Errorf("unsupported parameter type: %s", param.Type)
	}
}

func defaultString(param simulation.Parameter) string {
	if param.Default == nil {
		return ""
	}
	if param.Type == simulation.TypeInteger {
		return fmt.Sprintf("%d", simulation.ToInt(param.Default))
	}
	return fmt.Sprintf("%v", param.Default)
}

// parsingValidator rejects answers the parameter cannot parse
func parsingValidator(param simulation.Parameter) survey.Validator {
	return func(val interface{}) error {
		str, _ := val.(string)
		_, err := param.Parse(str)
		return err
	}
}

func promptNumber(param simulation.Parameter) (interface{}, error) {
	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultString(param),
	}

	var result string
	validator := survey.ComposeValidators(survey.Required, parsingValidator(param))
	if err := survey.AskOne(prompt, &result, survey.WithValidator(validator)); err != nil {
		return nil, err
	}
	return param.Parse(result)
}

func promptString(param simulation.Parameter) (string, error) {
	if len(param.Options) > 0 {
		prompt := &survey.Select{
			Message: param.Description,
			Options: param.Options,
			Default: defaultString(param),
		}

		var result string
		if err := survey.AskOne(prompt, &result); err != nil {
			return "", err
		}
		return result, nil
	}

	prompt := &survey.Input{
		Message: param.Description,
		Default: defaultString(param),
	}

	var result string
	var validators []survey.Validator
	if param.Required {
		validators = append(validators, survey.Required)
	}

	if err := survey.AskOne(prompt, &result, survey.WithValidator(survey.ComposeValidators(validators...))); err != nil {
		return "", err
	}
	return result, nil
}

func promptBoolean(param simulation.Parameter) (bool, error) {
	defaultBool := false
	if param.Default != nil {
		switch v := param.Default.(type) {
		case bool:
			defaultBool = v
		case string:
			defaultBool = v == "true" || v == "yes" || v == "1"
		}
	}

	prompt := &survey.Confirm{
		Message: param.Description,
		Default: defaultBool,
	}

	var result bool
	if err := survey.AskOne(prompt, &result); err != nil {
		return false, err
	}
	return result, nil
}

func promptDuration(param simulation.Parameter) (time.Duration, error) {
	prompt := &survey.Input{
		Message: param.Description + " (e.g., 100ms, 1s, 2m)",
		Default: defaultString(param),
	}

	var result string
	if err := survey.AskOne(prompt, &result, survey.WithValidator(parsingValidator(param))); err != nil {
		return 0, err
	}

	duration, err := time.ParseDuration(result)
	if err != nil {
		return 0, fmt.Errorf("failed to parse duration: %w", err)
	}
	return duration, nil
}

// SelectSimulation asks the user to pick one of the discovered simulations
func SelectSimulation(sims []SimulationInfo) (SimulationInfo, error) {
	if len(sims) == 0 {
		return SimulationInfo{}, fmt.Errorf("no simulations found")
	}
	if len(sims) == 1 {
		return sims[0], nil
	}

	options := make([]string, len(sims))
	for i, s := range sims {
		options[i] = fmt.Sprintf("%s - %s", s.Config.Name, s.Config.Description)
	}

	var idx int
	prompt := &survey.Select{
		Message: "Select a simulation to run:",
		Options: options,
	}
	if err := survey.AskOne(prompt, &idx); err != nil {
		return SimulationInfo{}, err
	}
	return sims[idx], nil
}
