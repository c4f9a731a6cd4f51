package testutil

// OpGenConfig configures the operation generator. Rates are percentages of
// generated ops; the remainder lists names.
type OpGenConfig struct {
	CreateRate     int
	CreateTempRate int
	ReadRate       int
	RemoveRate     int
	RenameRate     int
	CopyRate       int
	FileLenRate    int

	// MaxFileLen bounds generated file sizes.
	MaxFileLen int64
}

// DefaultOpGenConfig returns a balanced configuration.
func DefaultOpGenConfig() OpGenConfig {
	return OpGenConfig{
		CreateRate:     25,
		CreateTempRate: 10,
		ReadRate:       20,
		RemoveRate:     10,
		RenameRate:     15,
		CopyRate:       8,
		FileLenRate:    7,
		MaxFileLen:     3000,
	}
}

// OpGenerator generates deterministic operations from a byte stream.
type OpGenerator struct {
	stream *ByteStream
	config OpGenConfig
	model  *Model
}

// NewOpGenerator creates a new operation generator. The model is consulted
// so reads target existing files and valid ranges most of the time.
func NewOpGenerator(fuzzBytes []byte, model *Model, cfg OpGenConfig) *OpGenerator {
	return &OpGenerator{
		stream: NewByteStream(fuzzBytes),
		config: cfg,
		model:  model,
	}
}

// HasMore reports whether more operations can be generated.
func (g *OpGenerator) HasMore() bool {
	return g.stream.HasMore()
}

// NextOp generates the next operation.
func (g *OpGenerator) NextOp() Op {
	choice := g.stream.NextInt(100)
	cfg := g.config

	switch {
	case choice < cfg.CreateRate:
		return &OpCreate{
			Name:   g.name(),
			Data:   g.stream.NextData(cfg.MaxFileLen),
			Chunks: 1 + g.stream.NextInt(8),
		}
	case choice < cfg.CreateRate+cfg.CreateTempRate:
		return &OpCreateTemp{
			Prefix: g.stream.NextName(),
			Suffix: g.stream.NextName(),
			Data:   g.stream.NextData(64),
		}
	}

	choice -= cfg.CreateRate + cfg.CreateTempRate

	switch {
	case choice < cfg.ReadRate:
		return g.genRead()
	case choice < cfg.ReadRate+cfg.RemoveRate:
		return &OpRemove{Name: g.name()}
	case choice < cfg.ReadRate+cfg.RemoveRate+cfg.RenameRate:
		return &OpRename{Src: g.name(), Dst: g.name()}
	case choice < cfg.ReadRate+cfg.RemoveRate+cfg.RenameRate+cfg.CopyRate:
		return &OpCopy{Src: g.name(), Dst: g.name()}
	case choice < cfg.ReadRate+cfg.RemoveRate+cfg.RenameRate+cfg.CopyRate+cfg.FileLenRate:
		return &OpFileLen{Name: g.name()}
	default:
		return &OpList{}
	}
}

// name returns an existing name most of the time and a fresh one otherwise.
func (g *OpGenerator) name() string {
	names := g.model.Names()
	if len(names) > 0 && g.stream.NextInt(4) != 0 {
		return names[g.stream.NextInt(len(names))]
	}

	return g.stream.NextName()
}

func (g *OpGenerator) genRead() Op {
	name := g.name()
	b, _ := g.model.Content(name)
	size := int64(len(b))

	// Allow a little overshoot so out-of-range reads are exercised.
	off := g.stream.NextInt64(size + 3)
	n := g.stream.NextInt64(size - off + 3)

	if g.stream.NextInt(16) == 0 {
		off = -off - 1
	}

	return &OpRead{Name: name, Off: off, N: n}
}
