package molecule

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/shinzlet/atomcad-go/engine/periodic"
)

// elementSymbols maps PDB element symbols (columns 77-78, upper case) to
// element codes. Falls back to the first letter of the atom name for files
// that leave the element columns blank.
var elementSymbols = map[string]periodic.Element{
	"H":  periodic.Hydrogen,
	"HE": periodic.Helium,
	"LI": periodic.Lithium,
	"B":  periodic.Boron,
	"C":  periodic.Carbon,
	"N":  periodic.Nitrogen,
	"O":  periodic.Oxygen,
	"F":  periodic.Fluorine,
	"NE": periodic.Neon,
	"NA": periodic.Sodium,
	"MG": periodic.Magnesium,
	"SI": periodic.Silicon,
	"P":  periodic.Phosphorus,
	"S":  periodic.Sulfur,
	"CL": periodic.Chlorine,
	"K":  periodic.Potassium,
	"CA": periodic.Calcium,
	"FE": periodic.Iron,
	"BR": periodic.Bromine,
	"I":  periodic.Iodine,
}

// LoadPDBFile reads a Protein Data Bank file from disk.
//
// Parameters:
//   - path: filesystem path of the .pdb file
//   - name: display name for the resulting molecule
//
// Returns:
//   - Molecule: the parsed molecule
//   - error: error if the file cannot be read or parsed
func LoadPDBFile(path, name string) (Molecule, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open PDB file: %w", err)
	}
	defer f.Close()
	return LoadPDB(f, name)
}

// LoadPDB parses PDB-format text: ATOM and HETATM records become atoms,
// CONECT records become single bonds. Records are fixed-column; fields this
// renderer does not display (occupancy, chains, residues) are skipped.
//
// Reference: https://www.wwpdb.org/documentation/file-format-content/format33/sect9.html
//
// Parameters:
//   - r: the PDB text source
//   - name: display name for the resulting molecule
//
// Returns:
//   - Molecule: the parsed molecule
//   - error: error if a record is malformed
func LoadPDB(r io.Reader, name string) (Molecule, error) {
	mol := NewMolecule(name)

	// PDB serial numbers are arbitrary; map them to our dense indices.
	serialToIndex := make(map[int]int)

	scanner := bufio.NewScanner(r)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		if len(line) < 6 {
			continue
		}

		switch strings.TrimSpace(line[:6]) {
		case "ATOM", "HETATM":
			if len(line) < 54 {
				return nil, fmt.Errorf("line %d: atom record too short (%d columns)", lineNum, len(line))
			}
			serial, err := strconv.Atoi(strings.TrimSpace(line[6:11]))
			if err != nil {
				return nil, fmt.Errorf("line %d: bad atom serial: %w", lineNum, err)
			}
			x, err := parsePDBCoord(line[30:38])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad x coordinate: %w", lineNum, err)
			}
			y, err := parsePDBCoord(line[38:46])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad y coordinate: %w", lineNum, err)
			}
			z, err := parsePDBCoord(line[46:54])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad z coordinate: %w", lineNum, err)
			}

			el, err := parsePDBElement(line)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNum, err)
			}
			serialToIndex[serial] = mol.AddAtom(el, [3]float32{x, y, z})
		case "CONECT":
			fields := strings.Fields(line[6:])
			if len(fields) < 2 {
				continue
			}
			from, err := strconv.Atoi(fields[0])
			if err != nil {
				return nil, fmt.Errorf("line %d: bad CONECT serial: %w", lineNum, err)
			}
			fromIdx, ok := serialToIndex[from]
			if !ok {
				return nil, fmt.Errorf("line %d: CONECT references unknown atom %d", lineNum, from)
			}
			for _, f := range fields[1:] {
				to, err := strconv.Atoi(f)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad CONECT serial: %w", lineNum, err)
				}
				toIdx, ok := serialToIndex[to]
				if !ok {
					return nil, fmt.Errorf("line %d: CONECT references unknown atom %d", lineNum, to)
				}
				// CONECT records are mirrored in well-formed files; the edge
				// set makes the duplicate a no-op rather than an error.
				if err := mol.AddBond(fromIdx, toIdx, BondOrderSingle); err != nil && !strings.Contains(err.Error(), "already exists") {
					return nil, fmt.Errorf("line %d: %w", lineNum, err)
				}
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read PDB text: %w", err)
	}
	return mol, nil
}

func parsePDBCoord(field string) (float32, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(field), 32)
	return float32(v), err
}

func parsePDBElement(line string) (periodic.Element, error) {
	if len(line) >= 78 {
		sym := strings.ToUpper(strings.TrimSpace(line[76:78]))
		if el, ok := elementSymbols[sym]; ok {
			return el, nil
		}
	}
	// Fall back to the atom name (columns 13-16) for minimal files.
	if len(line) >= 14 {
		sym := strings.ToUpper(strings.TrimSpace(line[12:14]))
		sym = strings.TrimLeft(sym, "0123456789")
		if el, ok := elementSymbols[sym]; ok {
			return el, nil
		}
		if len(sym) > 0 {
			if el, ok := elementSymbols[sym[:1]]; ok {
				return el, nil
			}
		}
	}
	return 0, fmt.Errorf("unknown element symbol in record %q", strings.TrimSpace(line))
}
