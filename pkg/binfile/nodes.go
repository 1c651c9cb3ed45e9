package binfile

import (
	"errors"
	"fmt"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/bucket"
	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
)

// The serialised form of a circuit.  Since instructions, addresses and
// locations are closed sets of types, each is flattened into a single tagged
// node.  Only the JSON tags are given, since these are also used by the CBOR
// encoder.

type circuitNode struct {
	Producer  circuit.Producer `json:"producer"`
	Templates []templateNode   `json:"templates"`
	Functions []functionNode   `json:"functions"`
}

type templateNode struct {
	circuit.Template
	Body []*node `json:"body"`
}

type functionNode struct {
	circuit.Function
	Body []*node `json:"body"`
}

type node struct {
	Kind    string `json:"kind"`
	Line    uint   `json:"line,omitempty"`
	Message uint   `json:"message_id,omitempty"`
	// Constants
	ParseAs string `json:"parse_as,omitempty"`
	Value   uint   `json:"value,omitempty"`
	OpAux   uint   `json:"op_aux,omitempty"`
	// Memory accesses (and calls returning into a destination)
	Address  *addressNode  `json:"address,omitempty"`
	Location *locationNode `json:"location,omitempty"`
	IsOutput bool          `json:"is_output,omitempty"`
	Size     uint          `json:"size,omitempty"`
	Src      *node         `json:"src,omitempty"`
	// Control flow
	Cond *node   `json:"cond,omitempty"`
	Then []*node `json:"then,omitempty"`
	Else []*node `json:"else,omitempty"`
	Body []*node `json:"body,omitempty"`
	// Calls
	Symbol    string  `json:"symbol,omitempty"`
	Args      []*node `json:"args,omitempty"`
	ArgSizes  []uint  `json:"arg_sizes,omitempty"`
	ArenaSize uint    `json:"arena_size,omitempty"`
	// Component creation
	Create *createNode `json:"create,omitempty"`
	// Logging
	Log []logNode `json:"log,omitempty"`
}

type addressNode struct {
	Kind        string `json:"kind"`
	Cmp         *node  `json:"cmp,omitempty"`
	IsOutput    bool   `json:"is_output,omitempty"`
	Parallelism string `json:"parallel,omitempty"`
	Input       string `json:"input,omitempty"`
}

type locationNode struct {
	Kind           string  `json:"kind"`
	Offset         *node   `json:"offset,omitempty"`
	TemplateHeader string  `json:"template_header,omitempty"`
	SignalCode     uint    `json:"signal_code,omitempty"`
	Indexes        []*node `json:"indexes,omitempty"`
}

type createNode struct {
	TemplateId          uint              `json:"template_id"`
	Symbol              string            `json:"symbol"`
	Name                string            `json:"name"`
	SubcmpId            *node             `json:"sub_cmp_id"`
	Positions           []bucket.Position `json:"positions,omitempty"`
	Parallelism         string            `json:"parallel"`
	MixedArray          bool              `json:"mixed_array,omitempty"`
	MixedParallel       bool              `json:"mixed_parallel,omitempty"`
	Dimensions          []uint            `json:"dimensions"`
	SignalOffset        uint              `json:"signal_offset"`
	SignalOffsetJump    uint              `json:"signal_offset_jump"`
	ComponentOffset     uint              `json:"component_offset"`
	ComponentOffsetJump uint              `json:"component_offset_jump"`
	NumberOfCmp         uint              `json:"number_of_cmp"`
	HasInputs           bool              `json:"has_inputs,omitempty"`
}

type logNode struct {
	String *uint `json:"string,omitempty"`
	Expr   *node `json:"expr,omitempty"`
}

// Names of enumerated values, indexed by value.
var (
	valueKinds    = []string{"u32", "bigint"}
	parallelisms  = []string{"dynamic", "sequential", "parallel"}
	inputStatuses = []string{"none", "last", "not_last", "unknown"}
)

// ============================================================================
// Encoding
// ============================================================================

func encodeCircuit(c *circuit.Circuit) *circuitNode {
	var (
		templates = make([]templateNode, len(c.Templates))
		functions = make([]functionNode, len(c.Functions))
	)
	//
	for i, t := range c.Templates {
		templates[i] = templateNode{*t, encodeAll(t.Body)}
	}
	//
	for i, f := range c.Functions {
		functions[i] = functionNode{*f, encodeAll(f.Body)}
	}
	//
	return &circuitNode{c.Producer, templates, functions}
}

func encodeAll(insns []bucket.Instruction) []*node {
	var nodes = make([]*node, len(insns))
	//
	for i, insn := range insns {
		nodes[i] = encode(insn)
	}
	//
	return nodes
}

func encode(insn bucket.Instruction) *node {
	if insn == nil {
		return nil
	}
	//
	meta := insn.Metadata()
	n := &node{Line: meta.Line, Message: meta.MessageId}
	//
	switch b := insn.(type) {
	case *bucket.Value:
		n.Kind = "value"
		n.ParseAs = valueKinds[b.Kind]
		n.Value = b.Value
		n.OpAux = b.OpAux
	case *bucket.Load:
		n.Kind = "load"
		n.Address = encodeAddress(b.Address)
		n.Location = encodeLocation(b.Src)
		n.Size = b.Size
	case *bucket.Store:
		n.Kind = "store"
		n.encodeDestination(b.Dest)
		n.Src = encode(b.Src)
	case *bucket.Branch:
		n.Kind = "branch"
		n.Cond = encode(b.Cond)
		n.Then = encodeAll(b.Then)
		n.Else = encodeAll(b.Else)
	case *bucket.Loop:
		n.Kind = "loop"
		n.Cond = encode(b.Cond)
		n.Body = encodeAll(b.Body)
	case *bucket.Call:
		n.Kind = "call"
		n.Symbol = b.Symbol
		n.Args = encodeAll(b.Arguments)
		n.ArgSizes = b.ArgumentSizes
		n.ArenaSize = b.ArenaSize
		//
		switch r := b.Return.(type) {
		case *bucket.Intermediate:
			n.OpAux = r.OpAux
		case *bucket.Final:
			n.encodeDestination(r.Dest)
		}
	case *bucket.CreateComponent:
		n.Kind = "create"
		n.Create = &createNode{b.TemplateId, b.Symbol, b.Name, encode(b.SubcmpId), b.Positions,
			parallelisms[b.Parallelism], b.MixedArray, b.MixedParallel, b.Dimensions, b.SignalOffset,
			b.SignalOffsetJump, b.ComponentOffset, b.ComponentOffsetJump, b.NumberOfCmp, b.HasInputs}
	case *bucket.Assert:
		n.Kind = "assert"
		n.Cond = encode(b.Cond)
	case *bucket.Return:
		n.Kind = "return"
		n.Size = b.Size
		n.Src = encode(b.Value)
	case *bucket.Log:
		n.Kind = "log"
		n.Log = make([]logNode, len(b.Args))
		//
		for i, arg := range b.Args {
			switch a := arg.(type) {
			case *bucket.LogString:
				id := a.Id
				n.Log[i] = logNode{String: &id}
			case *bucket.LogExpr:
				n.Log[i] = logNode{Expr: encode(a.Expr)}
			}
		}
	default:
		panic(fmt.Sprintf("unknown instruction %T", insn))
	}
	//
	return n
}

func (n *node) encodeDestination(dest bucket.Destination) {
	n.Address = encodeAddress(dest.Address)
	n.Location = encodeLocation(dest.Location)
	n.IsOutput = dest.IsOutput
	n.Size = dest.Size
}

func encodeAddress(address bucket.Address) *addressNode {
	switch a := address.(type) {
	case *bucket.Variable:
		return &addressNode{Kind: "variable"}
	case *bucket.Signal:
		return &addressNode{Kind: "signal"}
	case *bucket.SubcomponentSignal:
		return &addressNode{"subcomponent", encode(a.CmpAddress), a.IsOutput, parallelisms[a.Parallelism],
			inputStatuses[a.Input]}
	default:
		return nil
	}
}

func encodeLocation(location bucket.Location) *locationNode {
	switch l := location.(type) {
	case *bucket.Indexed:
		return &locationNode{Kind: "indexed", Offset: encode(l.Offset), TemplateHeader: l.TemplateHeader}
	case *bucket.Mapped:
		return &locationNode{Kind: "mapped", SignalCode: l.SignalCode, Indexes: encodeAll(l.Indexes)}
	default:
		return nil
	}
}

// ============================================================================
// Decoding
// ============================================================================

func decodeCircuit(bundle *circuitNode) (*circuit.Circuit, error) {
	var (
		c    = &circuit.Circuit{Producer: bundle.Producer}
		errs []error
	)
	//
	for _, tn := range bundle.Templates {
		t := tn.Template
		body, err := decodeAll(tn.Body)
		//
		if err != nil {
			errs = append(errs, fmt.Errorf("template %s: %w", t.Header, err))
		}
		//
		t.Body = body
		c.Templates = append(c.Templates, &t)
	}
	//
	for _, fn := range bundle.Functions {
		f := fn.Function
		body, err := decodeAll(fn.Body)
		//
		if err != nil {
			errs = append(errs, fmt.Errorf("function %s: %w", f.Header, err))
		}
		//
		f.Body = body
		c.Functions = append(c.Functions, &f)
	}
	//
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	//
	return c, nil
}

func decodeAll(nodes []*node) ([]bucket.Instruction, error) {
	var insns = make([]bucket.Instruction, len(nodes))
	//
	for i, n := range nodes {
		insn, err := decodeRequired(n)
		if err != nil {
			return nil, err
		}
		//
		insns[i] = insn
	}
	//
	return insns, nil
}

// decodeRequired decodes a node which must be present.
func decodeRequired(n *node) (bucket.Instruction, error) {
	if n == nil {
		return nil, errors.New("missing instruction")
	}
	//
	return decode(n)
}

func decode(n *node) (bucket.Instruction, error) {
	var (
		meta = bucket.Meta{Line: n.Line, MessageId: n.Message}
		err  error
	)
	//
	switch n.Kind {
	case "value":
		kind, err := enumeration(valueKinds, n.ParseAs, n.Line)
		if err != nil {
			return nil, err
		}
		//
		return &bucket.Value{Meta: meta, Kind: bucket.ValueKind(kind), Value: n.Value, OpAux: n.OpAux}, nil
	case "load":
		var b = &bucket.Load{Meta: meta, Size: n.Size}
		//
		if b.Address, err = decodeAddress(n.Address, n.Line); err != nil {
			return nil, err
		} else if b.Src, err = decodeLocation(n.Location, n.Line); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "store":
		var b = &bucket.Store{Meta: meta}
		//
		if b.Dest, err = n.decodeDestination(); err != nil {
			return nil, err
		} else if b.Src, err = decodeRequired(n.Src); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "branch":
		var b = &bucket.Branch{Meta: meta}
		//
		if b.Cond, err = decodeRequired(n.Cond); err != nil {
			return nil, err
		} else if b.Then, err = decodeAll(n.Then); err != nil {
			return nil, err
		} else if b.Else, err = decodeAll(n.Else); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "loop":
		var b = &bucket.Loop{Meta: meta}
		//
		if b.Cond, err = decodeRequired(n.Cond); err != nil {
			return nil, err
		} else if b.Body, err = decodeAll(n.Body); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "call":
		return n.decodeCall(meta)
	case "create":
		return n.decodeCreate(meta)
	case "assert":
		var b = &bucket.Assert{Meta: meta}
		//
		if b.Cond, err = decodeRequired(n.Cond); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "return":
		var b = &bucket.Return{Meta: meta, Size: n.Size}
		//
		if b.Value, err = decodeRequired(n.Src); err != nil {
			return nil, err
		}
		//
		return b, nil
	case "log":
		return n.decodeLog(meta)
	default:
		return nil, fmt.Errorf("unknown instruction kind %q (line %d)", n.Kind, n.Line)
	}
}

func (n *node) decodeCall(meta bucket.Meta) (bucket.Instruction, error) {
	var (
		b   = &bucket.Call{Meta: meta, Symbol: n.Symbol, ArgumentSizes: n.ArgSizes, ArenaSize: n.ArenaSize}
		err error
	)
	//
	if b.Arguments, err = decodeAll(n.Args); err != nil {
		return nil, err
	} else if len(b.ArgumentSizes) != len(b.Arguments) {
		return nil, fmt.Errorf("call %s has %d arguments but %d sizes (line %d)", n.Symbol, len(b.Arguments),
			len(b.ArgumentSizes), n.Line)
	}
	// Calls without a destination leave their result on the expression stack
	if n.Address == nil {
		b.Return = &bucket.Intermediate{OpAux: n.OpAux}
	} else if dest, err := n.decodeDestination(); err != nil {
		return nil, err
	} else {
		b.Return = &bucket.Final{Dest: dest}
	}
	//
	return b, nil
}

func (n *node) decodeCreate(meta bucket.Meta) (bucket.Instruction, error) {
	var c = n.Create
	//
	if c == nil {
		return nil, fmt.Errorf("missing component details (line %d)", n.Line)
	}
	//
	parallelism, err := enumeration(parallelisms, c.Parallelism, n.Line)
	if err != nil {
		return nil, err
	}
	//
	cmp, err := decodeRequired(c.SubcmpId)
	if err != nil {
		return nil, err
	}
	//
	return &bucket.CreateComponent{
		Meta:                meta,
		TemplateId:          c.TemplateId,
		Symbol:              c.Symbol,
		Name:                c.Name,
		SubcmpId:            cmp,
		Positions:           c.Positions,
		Parallelism:         bucket.Parallelism(parallelism),
		MixedArray:          c.MixedArray,
		MixedParallel:       c.MixedParallel,
		Dimensions:          c.Dimensions,
		SignalOffset:        c.SignalOffset,
		SignalOffsetJump:    c.SignalOffsetJump,
		ComponentOffset:     c.ComponentOffset,
		ComponentOffsetJump: c.ComponentOffsetJump,
		NumberOfCmp:         c.NumberOfCmp,
		HasInputs:           c.HasInputs,
	}, nil
}

func (n *node) decodeLog(meta bucket.Meta) (bucket.Instruction, error) {
	var b = &bucket.Log{Meta: meta, Args: make([]bucket.LogArg, len(n.Log))}
	//
	for i, arg := range n.Log {
		switch {
		case arg.String != nil && arg.Expr == nil:
			b.Args[i] = &bucket.LogString{Id: *arg.String}
		case arg.Expr != nil && arg.String == nil:
			expr, err := decode(arg.Expr)
			if err != nil {
				return nil, err
			}
			//
			b.Args[i] = &bucket.LogExpr{Expr: expr}
		default:
			return nil, fmt.Errorf("log argument %d must be either a string or an expression (line %d)", i, n.Line)
		}
	}
	//
	return b, nil
}

func (n *node) decodeDestination() (bucket.Destination, error) {
	var (
		dest = bucket.Destination{IsOutput: n.IsOutput, Size: n.Size}
		err  error
	)
	//
	if dest.Address, err = decodeAddress(n.Address, n.Line); err != nil {
		return dest, err
	}
	//
	dest.Location, err = decodeLocation(n.Location, n.Line)
	//
	return dest, err
}

func decodeAddress(n *addressNode, line uint) (bucket.Address, error) {
	if n == nil {
		return nil, fmt.Errorf("missing address (line %d)", line)
	}
	//
	switch n.Kind {
	case "variable":
		return &bucket.Variable{}, nil
	case "signal":
		return &bucket.Signal{}, nil
	case "subcomponent":
		parallelism, err := enumeration(parallelisms, n.Parallelism, line)
		if err != nil {
			return nil, err
		}
		//
		input, err := enumeration(inputStatuses, n.Input, line)
		if err != nil {
			return nil, err
		}
		//
		cmp, err := decodeRequired(n.Cmp)
		if err != nil {
			return nil, err
		}
		//
		return &bucket.SubcomponentSignal{CmpAddress: cmp, IsOutput: n.IsOutput,
			Parallelism: bucket.Parallelism(parallelism), Input: bucket.InputStatus(input)}, nil
	default:
		return nil, fmt.Errorf("unknown address kind %q (line %d)", n.Kind, line)
	}
}

func decodeLocation(n *locationNode, line uint) (bucket.Location, error) {
	if n == nil {
		return nil, fmt.Errorf("missing location (line %d)", line)
	}
	//
	switch n.Kind {
	case "indexed":
		offset, err := decodeRequired(n.Offset)
		if err != nil {
			return nil, err
		}
		//
		return &bucket.Indexed{Offset: offset, TemplateHeader: n.TemplateHeader}, nil
	case "mapped":
		indexes, err := decodeAll(n.Indexes)
		if err != nil {
			return nil, err
		}
		//
		return &bucket.Mapped{SignalCode: n.SignalCode, Indexes: indexes}, nil
	default:
		return nil, fmt.Errorf("unknown location kind %q (line %d)", n.Kind, line)
	}
}

// enumeration determines the value of an enumerated name.  An absent name
// selects the first value.
func enumeration(names []string, name string, line uint) (uint8, error) {
	if name == "" {
		return 0, nil
	}
	//
	for i, n := range names {
		if n == name {
			return uint8(i), nil
		}
	}
	//
	return 0, fmt.Errorf("unknown value %q, expected one of %v (line %d)", name, names, line)
}
