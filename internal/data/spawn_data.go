package data

// spawnFile: YAML раскладка файла спавнов.
type spawnFile struct {
	Creatures []creatureSpawnDef `yaml:"creatures"`
	Players   []playerSpawnDef   `yaml:"players"`
}

type creatureSpawnDef struct {
	GUID        uint64  `yaml:"guid"`
	Entry       uint32  `yaml:"entry"`
	Name        string  `yaml:"name"`
	MapID       uint32  `yaml:"map"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Z           float64 `yaml:"z"`
	Orientation float64 `yaml:"o"`
	Path        uint32  `yaml:"path"`
	Repeating   *bool   `yaml:"repeating"` // default true
}

type playerSpawnDef struct {
	GUID        uint64  `yaml:"guid"`
	Name        string  `yaml:"name"`
	MapID       uint32  `yaml:"map"`
	X           float64 `yaml:"x"`
	Y           float64 `yaml:"y"`
	Z           float64 `yaml:"z"`
	Orientation float64 `yaml:"o"`
	Money       int64   `yaml:"money"`
}
