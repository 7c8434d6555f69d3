//
// Copyright (c) 2026 BCN3D Technologies
//

package gcodepp

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"
)

// JobStep configures one script of a job
type JobStep struct {
	Script  string                 `yaml:"script"`
	Options map[string]interface{} `yaml:"options,omitempty"`
}

// Job is a saved post-processing configuration
type Job struct {
	Input  string    `yaml:"input,omitempty"`
	Output string    `yaml:"output,omitempty"`
	Steps  []JobStep `yaml:"steps"`
}

// LoadJob decodes a YAML job description
func LoadJob(reader io.Reader) (job *Job, err error) {
	job = &Job{}

	decoder := yaml.NewDecoder(reader)
	decoder.KnownFields(true)

	err = decoder.Decode(job)
	if err == io.EOF {
		err = nil
	}
	if err != nil {
		job = nil
		return
	}

	for n, step := range job.Steps {
		if len(step.Script) == 0 {
			err = fmt.Errorf("job step %d: script name missing", n+1)
			job = nil
			return
		}
	}

	return
}

// Args renders the step options as long flags, sorted by name
func (step *JobStep) Args() (args []string) {
	keys := make([]string, 0, len(step.Options))
	for key := range step.Options {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		var repr string
		switch value := step.Options[key].(type) {
		case nil:
			repr = ""
		case float64:
			repr = FormatFloat(value)
		default:
			repr = fmt.Sprintf("%v", value)
		}
		args = append(args, fmt.Sprintf("--%s=%s", key, repr))
	}

	return
}

// Pipeline builds the scripts of the job
func (job *Job) Pipeline(reg *Registry, env *Env) (pipe *Pipeline, err error) {
	pipe = NewPipeline(env)

	for _, step := range job.Steps {
		var script Script
		script, err = reg.NewScript(env, step.Script, step.Args())
		if err != nil {
			pipe = nil
			return
		}
		pipe.Add(step.Script, script)
	}

	return
}
