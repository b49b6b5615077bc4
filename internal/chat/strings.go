package chat

// Locale selects the string table.
type Locale string

const (
	LocaleEnUS Locale = "enUS"
	LocaleRuRU Locale = "ruRU"
)

// StringID identifies a localized server string.
type StringID uint32

const (
	StrUnknownCommand StringID = iota + 1
	StrBadArguments
	StrCreatureNotFound
	StrPlayerNotFound
	StrNoWaypointMovement
	StrNoFlight
	StrWaypointInfo
	StrWaypointPaused
	StrWaypointResumed
	StrTaxiStarted
	StrTaxiSkipped
	StrGridLoaded
	StrDespawned
	StrRespawnScheduled
	StrArenaState
	StrNoArena
)

var stringTables = map[Locale]map[StringID]string{
	LocaleEnUS: {
		StrUnknownCommand:     "Unknown command: %s",
		StrBadArguments:       "Usage: %s",
		StrCreatureNotFound:   "Creature %d not found.",
		StrPlayerNotFound:     "Player %d not found.",
		StrNoWaypointMovement: "Creature %d is not following a waypoint path.",
		StrNoFlight:           "Player is not in flight.",
		StrWaypointInfo:       "Creature %d: path %d, node %d, stalled %t, next move in %d ms.",
		StrWaypointPaused:     "Waypoint movement of %d paused.",
		StrWaypointResumed:    "Waypoint movement of %d resumed.",
		StrTaxiStarted:        "Flight started, %d nodes, cost %d.",
		StrTaxiSkipped:        "Skipped to node %d.",
		StrGridLoaded:         "Map %d grid %s loaded.",
		StrDespawned:          "Creature %d despawned.",
		StrRespawnScheduled:   "Creature %d will respawn in %s.",
		StrArenaState:         "Arena %s: %s.",
		StrNoArena:            "No arena is running.",
	},
	LocaleRuRU: {
		StrUnknownCommand:     "Неизвестная команда: %s",
		StrBadArguments:       "Использование: %s",
		StrCreatureNotFound:   "Существо %d не найдено.",
		StrPlayerNotFound:     "Игрок %d не найден.",
		StrNoWaypointMovement: "Существо %d не идёт по маршруту.",
		StrNoFlight:           "Игрок не в полёте.",
		StrWaypointInfo:       "Существо %d: путь %d, точка %d, остановлено %t, следующий шаг через %d мс.",
		StrWaypointPaused:     "Маршрут %d приостановлен.",
		StrWaypointResumed:    "Маршрут %d продолжен.",
		StrTaxiStarted:        "Полёт начат, точек %d, стоимость %d.",
		StrTaxiSkipped:        "Пропуск до точки %d.",
		StrGridLoaded:         "Карта %d, сетка %s загружена.",
		StrDespawned:          "Существо %d убрано.",
		StrRespawnScheduled:   "Существо %d появится через %s.",
		StrArenaState:         "Арена %s: %s.",
		// StrNoArena нет в ruRU: берётся из enUS
	},
}

// lookup returns the string of id in locale, falling back to enUS.
func lookup(locale Locale, id StringID) string {
	if s, ok := stringTables[locale][id]; ok {
		return s
	}
	if s, ok := stringTables[LocaleEnUS][id]; ok {
		return s
	}
	return ""
}
