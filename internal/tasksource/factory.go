package tasksource

import (
	"context"
	"fmt"
	"strings"
)

// SourceSpec specifies how to create a task source.
type SourceSpec struct {
	Type   SourceType
	Config map[string]string
}

// ParseSourceSpec parses a source specification string.
// Format: "type:param1=value1,param2=value2"
// Examples:
//   - "memory:"
//   - "todolist:path=tasks.md"
//   - "docstore:path=~/tasks"
//   - "postgres:dsn=postgres://localhost/taskvoice?sslmode=disable"
//   - "remote:url=https://api.example.com/v1,database=abc123"
func ParseSourceSpec(spec string) (SourceSpec, error) {
	parts := strings.SplitN(spec, ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return SourceSpec{}, fmt.Errorf("%w: invalid source spec format: %s", ErrInvalidConfig, spec)
	}

	sourceType := SourceType(strings.TrimSpace(parts[0]))
	config := make(map[string]string)

	// Parse config params
	if parts[1] != "" {
		for _, param := range strings.Split(parts[1], ",") {
			kv := strings.SplitN(param, "=", 2)
			if len(kv) != 2 {
				return SourceSpec{}, fmt.Errorf("%w: invalid parameter format: %s", ErrInvalidConfig, param)
			}
			config[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}

	return SourceSpec{
		Type:   sourceType,
		Config: config,
	}, nil
}

// CreateSource creates a TaskSource from a specification.
func CreateSource(ctx context.Context, spec SourceSpec) (TaskSource, error) {
	switch spec.Type {
	case SourceTypeMemory:
		return NewMemorySource(), nil

	case SourceTypeTodolist:
		path, ok := spec.Config["path"]
		if !ok {
			return nil, fmt.Errorf("%w: todolist requires 'path' parameter", ErrInvalidConfig)
		}
		return NewTodolistSource(expandHome(path))

	case SourceTypeDocstore:
		path, ok := spec.Config["path"]
		if !ok {
			return nil, fmt.Errorf("%w: docstore requires 'path' parameter", ErrInvalidConfig)
		}
		return NewDocstoreSource(expandHome(path))

	case SourceTypePostgres:
		return NewPostgresSource(ctx, spec.Config["dsn"])

	case SourceTypeRemote:
		return NewRemoteSource(RemoteConfig{
			URL:        spec.Config["url"],
			DatabaseID: spec.Config["database"],
			Token:      spec.Config["token"],
		})

	default:
		return nil, fmt.Errorf("%w: unsupported source type: %s", ErrInvalidConfig, spec.Type)
	}
}

// CreateMultiSourceFromSpecs creates a MultiSource from multiple specifications.
func CreateMultiSourceFromSpecs(ctx context.Context, specs []SourceSpec) (*MultiSource, error) {
	var sources []TaskSource

	for _, spec := range specs {
		source, err := CreateSource(ctx, spec)
		if err != nil {
			for _, s := range sources {
				s.Close()
			}
			return nil, fmt.Errorf("failed to create source %s: %w", spec.Type, err)
		}
		sources = append(sources, source)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("%w: no sources specified", ErrInvalidConfig)
	}

	return NewMultiSource(sources...), nil
}

// CreateMultiSourceFromStrings creates a MultiSource from string specifications.
func CreateMultiSourceFromStrings(ctx context.Context, specs []string) (*MultiSource, error) {
	var sourceSpecs []SourceSpec

	for _, specStr := range specs {
		spec, err := ParseSourceSpec(specStr)
		if err != nil {
			return nil, err
		}
		sourceSpecs = append(sourceSpecs, spec)
	}

	return CreateMultiSourceFromSpecs(ctx, sourceSpecs)
}
