package config

import (
	"flag"
)

// override copies one flag-backed field from src to dst.
type override func(dst, src *Settings)

// Flags binds the command line overrides shared by the commands. Values
// given on the command line win over the YAML file named by -config, which
// wins over the defaults.
type Flags struct {
	path      string
	flagged   *Settings
	overrides map[string]override
}

// RegisterFlags adds -config and the override flags to fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	f := &Flags{flagged: DefaultSettings(), overrides: make(map[string]override)}
	s := f.flagged

	fs.StringVar(&f.path, "config", "", "YAML settings file")
	f.int64Var(fs, "seed", &s.Seed, "world seed", func(d, s *Settings) { d.Seed = s.Seed })
	f.intVar(fs, "chunk-size", &s.ChunkSize, "voxels per chunk edge", func(d, s *Settings) { d.ChunkSize = s.ChunkSize })
	f.intVar(fs, "render-distance", &s.RenderDistance, "horizontal load radius in chunks", func(d, s *Settings) { d.RenderDistance = s.RenderDistance })
	f.intVar(fs, "height-chunks", &s.WorldHeightChunks, "vertical chunk layers", func(d, s *Settings) { d.WorldHeightChunks = s.WorldHeightChunks })
	f.intVar(fs, "workers", &s.GenerationWorkers, "generation workers", func(d, s *Settings) { d.GenerationWorkers = s.GenerationWorkers })
	f.boolVar(fs, "async", &s.AsyncGeneration, "generate chunks on worker goroutines", func(d, s *Settings) { d.AsyncGeneration = s.AsyncGeneration })
	f.boolVar(fs, "caves", &s.GenerateCaves, "carve caves", func(d, s *Settings) { d.GenerateCaves = s.GenerateCaves })
	fs.Func("mesher", "smooth, culled or greedy", func(v string) error {
		s.Mesher = MesherMode(v)
		f.overrides["mesher"] = func(d, s *Settings) { d.Mesher = s.Mesher }
		return nil
	})
	return f
}

func (f *Flags) intVar(fs *flag.FlagSet, name string, p *int, usage string, o override) {
	fs.IntVar(p, name, *p, usage)
	f.overrides[name] = o
}

func (f *Flags) int64Var(fs *flag.FlagSet, name string, p *int64, usage string, o override) {
	fs.Int64Var(p, name, *p, usage)
	f.overrides[name] = o
}

func (f *Flags) boolVar(fs *flag.FlagSet, name string, p *bool, usage string, o override) {
	fs.BoolVar(p, name, *p, usage)
	f.overrides[name] = o
}

// Settings resolves the final settings after fs has been parsed.
func (f *Flags) Settings(fs *flag.FlagSet) (*Settings, error) {
	s := DefaultSettings()
	if f.path != "" {
		loaded, err := Load(f.path)
		if err != nil {
			return nil, err
		}
		s = loaded
	}
	fs.Visit(func(fl *flag.Flag) {
		if o, ok := f.overrides[fl.Name]; ok {
			o(s, f.flagged)
		}
	})
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}
