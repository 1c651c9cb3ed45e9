package binfile

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Bitcoin-Wildlife-Sanctuary/circom/pkg/circuit"
	"github.com/fxamacker/cbor/v2"
)

// ============================================================================
// Binary File Format
// ============================================================================

// BinaryFile is a programatic representation of an underlying bucket bundle.
// A bundle holds a complete circuit, ready for code generation.
type BinaryFile struct {
	// Header for the binary file
	Header Header
	// The circuit itself.
	Circuit *circuit.Circuit
}

// NewBinaryFile constructs a new binary file with the default header for the
// currently supported version.
func NewBinaryFile(metadata []byte, c *circuit.Circuit) *BinaryFile {
	return &BinaryFile{
		Header{ZKBUCKET, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION, metadata},
		c,
	}
}

// Header provides a structured header for the binary file format.  In
// particular, it supports versioning and embedded (binary) metadata.
type Header struct {
	Identifier   [8]byte
	MajorVersion uint16
	MinorVersion uint16
	MetaData     []byte
}

// MarshalBinary converts the BinaryFile Header into a sequence of bytes.
func (p *Header) MarshalBinary() ([]byte, error) {
	var (
		buffer     bytes.Buffer
		majorBytes [2]byte
		minorBytes [2]byte
		metaLength [4]byte
	)
	// Marshall version numbers
	binary.BigEndian.PutUint16(majorBytes[:], p.MajorVersion)
	binary.BigEndian.PutUint16(minorBytes[:], p.MinorVersion)
	binary.BigEndian.PutUint32(metaLength[:], uint32(len(p.MetaData)))
	// Write identifier
	buffer.Write(p.Identifier[:])
	// Write major version
	buffer.Write(majorBytes[:])
	// Write minor version
	buffer.Write(minorBytes[:])
	// Write metadata length
	buffer.Write(metaLength[:])
	// Write metadata itself
	buffer.Write(p.MetaData)
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this BinaryFile Header from a given set of data
// bytes. This should match exactly the encoding above.
func (p *Header) UnmarshalBinary(buffer *bytes.Buffer) error {
	var (
		majorBytes      [2]byte
		minorBytes      [2]byte
		metaLengthBytes [4]byte
	)
	// Read identifier, versions and metadata length
	for _, field := range [][]byte{p.Identifier[:], majorBytes[:], minorBytes[:], metaLengthBytes[:]} {
		if err := readExactly(buffer, field); err != nil {
			return err
		}
	}
	// Make space for the metadata
	var metaLength = binary.BigEndian.Uint32(metaLengthBytes[:])
	//
	if uint64(metaLength) > uint64(buffer.Len()) {
		return errors.New("malformed binary file")
	}
	//
	var metaBytes = make([]byte, metaLength)
	// Read metadata itself
	if err := readExactly(buffer, metaBytes); err != nil {
		return err
	}
	// Finally assign everything over
	p.MajorVersion = binary.BigEndian.Uint16(majorBytes[:])
	p.MinorVersion = binary.BigEndian.Uint16(minorBytes[:])
	p.MetaData = metaBytes
	// Done
	return nil
}

// IsCompatible determines whether a given binary file is compatible with this
// version of witgen.
func (p *Header) IsCompatible() bool {
	//
	return p.Identifier == ZKBUCKET &&
		p.MajorVersion == BINFILE_MAJOR_VERSION &&
		p.MinorVersion <= BINFILE_MINOR_VERSION
}

// BINFILE_MAJOR_VERSION gives the major version of the binary file format.  No
// matter what version, we should always have the ZKBUCKET identifier first,
// followed by the header.  What follows after that, however, is determined by
// the major version.
const BINFILE_MAJOR_VERSION uint16 = 1

// BINFILE_MINOR_VERSION gives the minor version of the binary file format.  The
// expected interpretation is that older versions are compatible with newer
// ones, but not vice-versa.
const BINFILE_MINOR_VERSION uint16 = 0

// ZKBUCKET is used as the file identifier for bucket bundles.  This just
// helps us identify actual binary files from corrupted files.
var ZKBUCKET [8]byte = [8]byte{'z', 'k', 'b', 'u', 'c', 'k', 'e', 't'}

// IsBinaryFile checks whether the given data file begins with the expected
// "zkbucket" identifier.
func IsBinaryFile(data []byte) bool {
	var (
		zkbucket [8]byte
		buffer   *bytes.Buffer = bytes.NewBuffer(data)
	)
	//
	if _, err := buffer.Read(zkbucket[:]); err != nil {
		return false
	}
	// Check whether header identified
	return zkbucket == ZKBUCKET
}

// MarshalBinary converts the BinaryFile into a sequence of bytes, consisting of
// the header followed by the circuit in canonical CBOR.
func (p *BinaryFile) MarshalBinary() ([]byte, error) {
	var buffer bytes.Buffer
	// Marshal header
	headerBytes, err := p.Header.MarshalBinary()
	//
	if err != nil {
		return nil, err
	}
	// Encode header
	buffer.Write(headerBytes)
	// Encode circuit
	circuitBytes, err := cborEncMode.Marshal(encodeCircuit(p.Circuit))
	//
	if err != nil {
		return nil, err
	}
	//
	buffer.Write(circuitBytes)
	// Done
	return buffer.Bytes(), nil
}

// UnmarshalBinary initialises this BinaryFile from a given set of data bytes.
// This should match exactly the encoding above.
func (p *BinaryFile) UnmarshalBinary(data []byte) error {
	var (
		err    error
		bundle circuitNode
	)
	//
	buffer := bytes.NewBuffer(data)
	// Read header
	if err = p.Header.UnmarshalBinary(buffer); err == nil && p.Header.IsCompatible() {
		// Looks good, proceed.
		if err = cbor.Unmarshal(buffer.Bytes(), &bundle); err == nil {
			p.Circuit, err = decodeCircuit(&bundle)
		}
	} else if err == nil {
		err = fmt.Errorf("incompatible binary file was v%d.%d, but expected v%d.%d)",
			p.Header.MajorVersion, p.Header.MinorVersion, BINFILE_MAJOR_VERSION, BINFILE_MINOR_VERSION)
	}
	//
	return err
}

// MarshalJson converts a circuit into its (indented) JSON form.
func MarshalJson(c *circuit.Circuit) ([]byte, error) {
	return json.MarshalIndent(encodeCircuit(c), "", " ")
}

// UnmarshalJson decodes a circuit from its JSON form.
func UnmarshalJson(data []byte) (*circuit.Circuit, error) {
	var bundle circuitNode
	//
	if err := json.Unmarshal(data, &bundle); err != nil {
		return nil, err
	}
	//
	return decodeCircuit(&bundle)
}

// Decode reads a bucket bundle, which is either a binary file or plain JSON,
// and checks the decoded circuit is well formed.
func Decode(data []byte) (*circuit.Circuit, error) {
	var (
		c   *circuit.Circuit
		err error
	)
	//
	if IsBinaryFile(data) {
		var binf BinaryFile
		//
		err = binf.UnmarshalBinary(data)
		c = binf.Circuit
	} else {
		c, err = UnmarshalJson(data)
	}
	//
	if err != nil {
		return nil, err
	} else if err = c.Validate(); err != nil {
		return nil, err
	}
	//
	return c, nil
}

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("binfile: failed to create CBOR enc mode: %v", err))
	}
	//
	cborEncMode = em
}

func readExactly(buffer *bytes.Buffer, data []byte) error {
	if len(data) == 0 {
		return nil
	} else if n, err := buffer.Read(data); err != nil {
		return err
	} else if n != len(data) {
		return errors.New("malformed binary file")
	}
	//
	return nil
}
