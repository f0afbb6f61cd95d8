package demo

const carbonylMol = `methanal
  curlyarrow

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.2500    0.0000    0.0000 O   0  0  0  0  0  0  0  0  0  0  0  0
  1  2  2  0
M  END
`

const substitutionMol = `hydroxide and bromomethane
  curlyarrow

  3  1  0  0  0  0  0  0  0  0999 V2000
   -2.0000    0.0000    0.0000 O   0  0  0  0  0  1  0  0  0  0  0  0
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.9000    0.0000    0.0000 Br  0  0  0  0  0  0  0  0  0  0  0  0
  2  3  1  0
M  CHG  1   1  -1
M  END
`

const allylMol = `allyl cation
  curlyarrow

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.3000    0.7500    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.6000    0.0000    0.0000 C   0  0  0  0  0  3  0  0  0  0  0  0
  1  2  2  0
  2  3  1  0
M  CHG  1   3   1
M  END
`

const bromineMol = `bromine
  curlyarrow

  2  1  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 Br  0  0  0  0  0  0  0  0  0  0  0  0
    2.2800    0.0000    0.0000 Br  0  0  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
M  END
`

// Builtin returns the teaching scripts compiled into the binary. The CLI
// and server fall back to these when no script directory is given.
func Builtin() []Script {
	return []Script{
		{
			Name:    "carbonyl",
			Title:   "Carbonyl pi heterolysis",
			Summary: "Push the C=O pi pair onto oxygen and back again.",
			Molfile: carbonylMol,
			Steps: []Step{
				{
					Move:    "bond-to-atom",
					Atoms:   []int{0, 1},
					Caption: "The pi pair collapses onto oxygen, leaving a carbocation.",
				},
				{
					Move:    "lone-pair-to-bond",
					Atoms:   []int{1, 0},
					Caption: "An oxygen lone pair re-forms the pi bond.",
				},
			},
		},
		{
			Name:    "substitution",
			Title:   "Hydroxide attacks bromomethane",
			Summary: "A lone pair attacks carbon, then bromide leaves.",
			Molfile: substitutionMol,
			Steps: []Step{
				{
					Move:    "lone-pair-to-bond",
					Atoms:   []int{0, 1},
					Caption: "A hydroxide lone pair forms the new C-O bond.",
				},
				{
					Move:    "bond-to-atom",
					Atoms:   []int{1, 2},
					Caption: "The C-Br pair leaves with bromine as bromide.",
				},
			},
		},
		{
			Name:    "allyl-shift",
			Title:   "Allyl cation resonance",
			Summary: "The pi pair slides one bond over and the charge follows.",
			Molfile: allylMol,
			Steps: []Step{
				{
					Move:    "bond-to-bond",
					Atoms:   []int{0, 1, 2},
					Caption: "The pi pair shifts along the chain; the positive charge migrates to the far carbon.",
				},
			},
		},
		{
			Name:    "homolysis",
			Title:   "Bromine homolysis",
			Summary: "Light splits Br-Br evenly into two radicals.",
			Molfile: bromineMol,
			Steps: []Step{
				{
					Move:    "homolysis",
					Atoms:   []int{0, 1},
					Caption: "Each bromine keeps one electron of the sigma pair.",
				},
			},
		},
	}
}
