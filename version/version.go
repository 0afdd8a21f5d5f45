package version

var Version string    // version
var Commit string     // git commit id
var CommitDate string // git commit date
var TreeState string  // git tree state

func String() string {
	v := Version
	if v == "" {
		v = "dev"
	}
	if Commit == "" {
		return v
	}
	s := v + " (" + Commit
	if CommitDate != "" {
		s += " " + CommitDate
	}
	if TreeState != "" && TreeState != "clean" {
		s += " " + TreeState
	}
	return s + ")"
}
