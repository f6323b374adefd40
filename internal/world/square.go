package world

import (
	"math/rand"
	"slices"

	"github.com/oklog/ulid/v2"
	"github.com/zyedidia/generic/mapset"

	apperrors "github.com/samdwyer/dungeoncore/internal/platform/errors"
	"github.com/samdwyer/dungeoncore/internal/spatial"
	"github.com/samdwyer/dungeoncore/internal/temperature"
)

// SquareKind selects the structural rules a square follows.
type SquareKind int

const (
	// PlainSquare is an ordinary square.
	PlainSquare SquareKind = iota
	// TransparentSquare only has door walls, at most two and facing each other.
	TransparentSquare
	// RockSquare is solid: six doorless walls, never enterable.
	RockSquare
)

// String returns the kind name.
func (k SquareKind) String() string {
	switch k {
	case PlainSquare:
		return "plain"
	case TransparentSquare:
		return "transparent"
	case RockSquare:
		return "rock"
	default:
		return "unknown"
	}
}

var (
	// DefaultTemperature is the temperature of a new square.
	DefaultTemperature = temperature.C(25)
	// DefaultMinTemperature is the lower temperature bound of a new square.
	DefaultMinTemperature = temperature.C(-200)
	// DefaultMaxTemperature is the upper temperature bound of a new square.
	DefaultMaxTemperature = temperature.C(5000)
)

var (
	// ErrTemperatureOutOfBounds is returned when a temperature leaves a square's bounds.
	ErrTemperatureOutOfBounds = apperrors.New(apperrors.CodeOutOfRange, "temperature outside the square's bounds")
	// ErrCrossedBounds is returned when a lower temperature bound would exceed the upper one.
	ErrCrossedBounds = apperrors.New(apperrors.CodeStructuralViolation, "minimum temperature above maximum")
	// ErrMergeOutOfBounds is returned when a merged temperature would leave a member's bounds.
	ErrMergeOutOfBounds = apperrors.New(apperrors.CodeMergeBounds, "merged temperature outside a square's bounds")
	// ErrInvalidBorders is returned when a border configuration breaks the wall and door rules.
	ErrInvalidBorders = apperrors.New(apperrors.CodeStructuralViolation, "invalid border configuration")
	// ErrCannotConnect is returned when a square cannot be connected to the given neighbours.
	ErrCannotConnect = apperrors.New(apperrors.CodeStructuralViolation, "square cannot connect to these neighbours")
	// ErrFixedTemperature is returned when changing the temperature of a rock.
	ErrFixedTemperature = apperrors.New(apperrors.CodeIllegalState, "square temperature cannot be changed")
	// ErrInvalidTargets is returned for empty or duplicate teleportation targets.
	ErrInvalidTargets = apperrors.New(apperrors.CodeStructuralViolation, "invalid teleportation targets")
	// ErrInvalidDirection is returned for a direction outside the six faces.
	ErrInvalidDirection = apperrors.New(apperrors.CodeOutOfRange, "invalid direction")
)

// Square is a cell of the dungeon with one border per direction.
type Square struct {
	id   ulid.ULID
	kind SquareKind

	temperature    temperature.Temperature
	minTemperature temperature.Temperature
	maxTemperature temperature.Temperature
	humidity       Humidity
	slippery       bool

	borders [len(spatial.Directions)]*Border
	targets []*Square

	merging       bool
	connecting    bool
	disconnecting bool
}

type squareOptions struct {
	kind        SquareKind
	temperature temperature.Temperature
	humidity    Humidity
	slippery    bool
	walls       []spatial.Direction
	wallsSet    bool
	targets     []*Square
}

// Option configures a new square.
type Option func(*squareOptions)

// WithTemperature sets the initial temperature.
func WithTemperature(t temperature.Temperature) Option {
	return func(o *squareOptions) { o.temperature = t }
}

// WithHumidity sets the initial humidity.
func WithHumidity(h Humidity) Option {
	return func(o *squareOptions) { o.humidity = h }
}

// WithSlipperyMaterial marks the floor material as slippery.
func WithSlipperyMaterial(slippery bool) Option {
	return func(o *squareOptions) { o.slippery = slippery }
}

// WithWalls sets the directions of the initial walls. Without this option a square gets a
// floor wall, or a north wall when transparent.
func WithWalls(dirs ...spatial.Direction) Option {
	return func(o *squareOptions) {
		o.walls = append([]spatial.Direction(nil), dirs...)
		o.wallsSet = true
	}
}

// Transparent makes the square transparent. Its initial walls are doors.
func Transparent() Option {
	return func(o *squareOptions) { o.kind = TransparentSquare }
}

// Rock makes the square a rock. Rocks ignore wall, temperature and humidity options.
func Rock() Option {
	return func(o *squareOptions) { o.kind = RockSquare }
}

// WithTeleportTargets gives the square one or more distinct teleportation targets.
func WithTeleportTargets(targets ...*Square) Option {
	return func(o *squareOptions) { o.targets = append([]*Square(nil), targets...) }
}

// NewSquare creates a square that has no neighbours.
func NewSquare(opts ...Option) (*Square, error) {
	o := squareOptions{
		kind:        PlainSquare,
		temperature: DefaultTemperature,
		humidity:    DefaultHumidity,
	}
	for _, opt := range opts {
		opt(&o)
	}

	if o.kind == RockSquare {
		o.temperature, o.humidity, o.slippery = temperature.C(0), 0, false
		o.walls, o.wallsSet = spatial.Directions[:], true
	}
	if !o.wallsSet {
		o.walls = []spatial.Direction{spatial.Floor}
		if o.kind == TransparentSquare {
			o.walls = []spatial.Direction{spatial.North}
		}
	}

	s := &Square{
		id:             ulid.Make(),
		kind:           o.kind,
		minTemperature: DefaultMinTemperature,
		maxTemperature: DefaultMaxTemperature,
		slippery:       o.slippery,
	}
	if !s.CanHaveAsTemperature(o.temperature) {
		return nil, ErrTemperatureOutOfBounds
	}
	if !o.humidity.Valid() {
		return nil, ErrInvalidHumidity
	}
	s.temperature, s.humidity = o.temperature, o.humidity

	if len(o.targets) > 0 {
		for i, t := range o.targets {
			if t == nil {
				return nil, ErrNilSquare
			}
			if slices.Contains(o.targets[:i], t) {
				return nil, ErrInvalidTargets
			}
		}
		s.targets = o.targets
	}

	if err := s.initialiseBorders(s.WallsAt(o.walls...)); err != nil {
		return nil, err
	}
	return s, nil
}

// ID returns the square's unique identifier.
func (s *Square) ID() ulid.ULID { return s.id }

// Kind returns the structural kind of the square.
func (s *Square) Kind() SquareKind { return s.kind }

// WallsAt returns the initial border template with doorless walls at dirs and open borders
// elsewhere. Transparent squares get door walls instead.
func (s *Square) WallsAt(dirs ...spatial.Direction) [len(spatial.Directions)]*Border {
	var out [len(spatial.Directions)]*Border
	for _, d := range spatial.Directions {
		switch {
		case !slices.Contains(dirs, d):
			out[d] = NewOpenBorder()
		case s.kind == TransparentSquare:
			out[d] = NewWall(true, false)
		default:
			out[d] = NewWall(false, false)
		}
	}
	return out
}

// initialiseBorders installs template with s as the only neighbour of every border.
func (s *Square) initialiseBorders(template [len(spatial.Directions)]*Border) error {
	if !s.CanHaveAsBorders(template) {
		return ErrInvalidBorders
	}
	s.borders = template
	for _, d := range spatial.Directions {
		s.borders[d] = NewOpenBorder()
		if err := template[d].Build(s, d, nil); err != nil {
			return err
		}
	}
	return nil
}

// Temperature returns the current temperature. A rock reports the mean temperature of its
// neighbours that are not rocks.
func (s *Square) Temperature() temperature.Temperature {
	if s.kind != RockSquare {
		return s.temperature
	}
	var sum float64
	var count int
	for _, d := range spatial.Directions {
		if n := s.Neighbour(d); n != nil && n.kind != RockSquare {
			sum += n.Temperature().Celsius()
			count++
		}
	}
	if count == 0 {
		return temperature.C(0)
	}
	return temperature.C(sum / float64(count))
}

// MinTemperature returns the lower temperature bound.
func (s *Square) MinTemperature() temperature.Temperature { return s.minTemperature }

// MaxTemperature returns the upper temperature bound.
func (s *Square) MaxTemperature() temperature.Temperature { return s.maxTemperature }

// CanHaveAsTemperature reports whether t lies within the square's bounds.
func (s *Square) CanHaveAsTemperature(t temperature.Temperature) bool {
	return t.Within(s.minTemperature, s.maxTemperature)
}

// SetMinTemperature changes the lower bound. The current temperature must remain within bounds.
func (s *Square) SetMinTemperature(t temperature.Temperature) error {
	if t.Compare(s.maxTemperature) > 0 {
		return ErrCrossedBounds
	}
	if !s.Temperature().Within(t, s.maxTemperature) {
		return ErrTemperatureOutOfBounds
	}
	s.minTemperature = t
	return nil
}

// SetMaxTemperature changes the upper bound. The current temperature must remain within bounds.
func (s *Square) SetMaxTemperature(t temperature.Temperature) error {
	if t.Compare(s.minTemperature) < 0 {
		return ErrCrossedBounds
	}
	if !s.Temperature().Within(s.minTemperature, t) {
		return ErrTemperatureOutOfBounds
	}
	s.maxTemperature = t
	return nil
}

// CanChangeTemperature reports whether ChangeTemperature is allowed.
func (s *Square) CanChangeTemperature() bool { return s.kind != RockSquare }

// ChangeTemperature sets the temperature and merges the square's space.
// Nothing changes when the merged result would leave any member's bounds.
func (s *Square) ChangeTemperature(t temperature.Temperature) error {
	if !s.CanChangeTemperature() {
		return ErrFixedTemperature
	}
	if !s.CanHaveAsTemperature(t) {
		return ErrTemperatureOutOfBounds
	}
	old := s.temperature
	s.temperature = t
	if _, err := planMerge(s.SquaresInSpace()); err != nil {
		s.temperature = old
		return err
	}
	return s.Merge()
}

// Humidity returns the current humidity.
func (s *Square) Humidity() Humidity { return s.humidity }

// ChangeHumidity sets the humidity and merges the square's space.
func (s *Square) ChangeHumidity(h Humidity) error {
	if !h.Valid() {
		return ErrInvalidHumidity
	}
	s.humidity = h
	return s.Merge()
}

// HasSlipperyMaterial reports whether the floor material itself is slippery.
func (s *Square) HasSlipperyMaterial() bool { return s.slippery }

// IsSlippery reports whether the square is slippery because of its material, standing water
// (100 % humidity at or above 0 °C) or ice (over 10 % humidity below 0 °C).
func (s *Square) IsSlippery() bool {
	c := s.Temperature().Celsius()
	water := s.humidity == MaxHumidity && c >= 0
	ice := s.humidity > 10_00 && c < 0
	return s.slippery || water || ice
}

// BorderAt returns the border in direction d, or nil for an invalid direction.
func (s *Square) BorderAt(d spatial.Direction) *Border {
	if !d.Valid() {
		return nil
	}
	return s.borders[d]
}

// Borders returns a copy of the six border slots.
func (s *Square) Borders() [len(spatial.Directions)]*Border {
	return s.borders
}

// CanHaveAsBorderAt reports whether replacing the border at d by b keeps the configuration
// valid. Every border is accepted while the square is connecting.
func (s *Square) CanHaveAsBorderAt(d spatial.Direction, b *Border) bool {
	if s.connecting {
		return true
	}
	if !d.Valid() {
		return false
	}
	replaced := s.borders
	replaced[d] = b
	return s.CanHaveAsBorders(replaced)
}

// CanHaveAsBorders reports whether borders is a valid configuration for s: no missing or
// terminated slot, at least one wall, at most three doors and no door in the floor, plus the
// extra rules of the square's kind.
func (s *Square) CanHaveAsBorders(borders [len(spatial.Directions)]*Border) bool {
	walls, doors := 0, 0
	var doorDirs []spatial.Direction
	for _, d := range spatial.Directions {
		b := borders[d]
		if b == nil || b.state == Terminated {
			return false
		}
		if !b.IsWall() {
			continue
		}
		walls++
		if b.door {
			doors++
			doorDirs = append(doorDirs, d)
			if d == spatial.Floor {
				return false
			}
		}
	}
	if walls < 1 || doors > 3 {
		return false
	}

	switch s.kind {
	case RockSquare:
		return walls == len(spatial.Directions) && doors == 0
	case TransparentSquare:
		if walls != doors || doors > 2 {
			return false
		}
		return doors < 2 || doorDirs[0].Opposite() == doorDirs[1]
	default:
		return true
	}
}

// HasProperBorders reports whether every slot holds a valid, initialised border of which s is
// a neighbour.
func (s *Square) HasProperBorders() bool {
	if !s.CanHaveAsBorders(s.borders) {
		return false
	}
	for _, b := range s.borders {
		if b.state != Initialised || !b.HasNeighbour(s) {
			return false
		}
	}
	return true
}

// Neighbour returns the square across the border in direction d, or nil.
func (s *Square) Neighbour(d spatial.Direction) *Square {
	b := s.BorderAt(d)
	if b == nil {
		return nil
	}
	return b.other(s)
}

// Neighbours returns the squares across each border that has a second neighbour.
func (s *Square) Neighbours() map[spatial.Direction]*Square {
	out := make(map[spatial.Direction]*Square)
	for _, d := range spatial.Directions {
		if n := s.Neighbour(d); n != nil {
			out[d] = n
		}
	}
	return out
}

// HasNeighbours reports whether any border joins s to another square.
func (s *Square) HasNeighbours() bool {
	for _, d := range spatial.Directions {
		if s.Neighbour(d) != nil {
			return true
		}
	}
	return false
}

// DominantBorders returns, per direction, an uninitialised copy of the dominant border between
// the square's own border and the opposite border of the given neighbour, or a copy of its own
// border where no neighbour is given.
func (s *Square) DominantBorders(neighbours map[spatial.Direction]*Square) ([len(spatial.Directions)]*Border, error) {
	var out [len(spatial.Directions)]*Border
	for d, n := range neighbours {
		if !d.Valid() {
			return out, ErrInvalidDirection
		}
		if n == nil {
			return out, ErrNilSquare
		}
	}
	for _, d := range spatial.Directions {
		own := s.borders[d]
		n, ok := neighbours[d]
		if !ok {
			out[d] = own.UninitialisedCopy()
			continue
		}
		out[d] = n.borders[d.Opposite()].Dominant(own).UninitialisedCopy()
	}
	return out, nil
}

// CanConnect reports whether s, which must have no neighbours yet, can be connected to the
// given neighbours: the dominant borders must suit s and every neighbour, and the merges the
// connection triggers must keep every temperature within bounds.
func (s *Square) CanConnect(neighbours map[spatial.Direction]*Square) bool {
	dominant, err := s.DominantBorders(neighbours)
	if err != nil {
		return false
	}
	return s.canConnectWith(neighbours, dominant) && s.planConnect(neighbours, dominant) == nil
}

func (s *Square) canConnectWith(neighbours map[spatial.Direction]*Square, dominant [len(spatial.Directions)]*Border) bool {
	if s.HasNeighbours() || !s.CanHaveAsBorders(dominant) {
		return false
	}
	for d, n := range neighbours {
		if n == s || !n.CanHaveAsBorderAt(d.Opposite(), dominant[d]) {
			return false
		}
	}
	return true
}

// planConnect replays the merges Connect will perform, in direction order, and reports the
// first member whose bounds the intermediate merged temperature would violate.
func (s *Square) planConnect(neighbours map[spatial.Direction]*Square, dominant [len(spatial.Directions)]*Border) error {
	members := mapset.New[*Square]()
	members.Put(s)
	joined := []*Square{s}
	merged := []float64{s.Temperature().Celsius()}
	humidities := []Humidity{s.humidity}

	for _, d := range spatial.Directions {
		n, ok := neighbours[d]
		if !ok || dominant[d].IsIsolating() {
			continue
		}
		newcomers := false
		for _, m := range n.SquaresInSpace() {
			if members.Has(m) {
				continue
			}
			members.Put(m)
			joined = append(joined, m)
			merged = append(merged, m.Temperature().Celsius())
			humidities = append(humidities, m.humidity)
			newcomers = true
		}
		if !newcomers {
			continue
		}
		mean := meanTemperature(merged)
		for _, m := range joined {
			if !m.CanHaveAsTemperature(mean) {
				return ErrMergeOutOfBounds
			}
		}
		h := meanHumidity(humidities)
		for i := range merged {
			merged[i], humidities[i] = mean.Celsius(), h
		}
	}
	return nil
}

// Connect joins s, which must have no neighbours yet, to the given neighbours by building the
// dominant border in every direction that has a neighbour.
func (s *Square) Connect(neighbours map[spatial.Direction]*Square) error {
	dominant, err := s.DominantBorders(neighbours)
	if err != nil {
		return err
	}
	if !s.canConnectWith(neighbours, dominant) {
		return ErrCannotConnect
	}
	if err := s.planConnect(neighbours, dominant); err != nil {
		return err
	}

	s.connecting = true
	defer func() { s.connecting = false }()
	for _, d := range spatial.Directions {
		n, ok := neighbours[d]
		if !ok {
			continue
		}
		if err := dominant[d].Build(s, d, n); err != nil {
			return err
		}
	}
	return nil
}

// IsConnecting reports whether s is in the middle of Connect.
func (s *Square) IsConnecting() bool { return s.connecting }

// IsMerging reports whether s is pushing a merge to its space.
func (s *Square) IsMerging() bool { return s.merging }

// IsDisconnecting reports whether s is in the middle of Disconnect.
func (s *Square) IsDisconnecting() bool { return s.disconnecting }

// spaceNeighbours returns the squares across the non-isolating borders of s.
func (s *Square) spaceNeighbours() []*Square {
	var out []*Square
	for _, b := range s.borders {
		if b.isolating {
			continue
		}
		if n := b.other(s); n != nil {
			out = append(out, n)
		}
	}
	return out
}

// SquaresInSpace returns s and every square reachable from it through non-isolating borders.
func (s *Square) SquaresInSpace() []*Square {
	_, visited := walk(s, nil, (*Square).spaceNeighbours)
	return visited
}

// IsInSpace reports whether other belongs to the space of s.
func (s *Square) IsInSpace(other *Square) bool {
	if other == nil {
		return false
	}
	found, _ := walk(s, other, (*Square).spaceNeighbours)
	return found
}

type mergePlan struct {
	temperature temperature.Temperature
	humidity    Humidity
}

// planMerge computes the merged values of space and checks them against every member's bounds.
func planMerge(space []*Square) (mergePlan, error) {
	temps := make([]float64, len(space))
	hums := make([]Humidity, len(space))
	for i, m := range space {
		temps[i], hums[i] = m.Temperature().Celsius(), m.humidity
	}
	plan := mergePlan{temperature: meanTemperature(temps), humidity: meanHumidity(hums)}
	for _, m := range space {
		if !m.CanHaveAsTemperature(plan.temperature) {
			return mergePlan{}, ErrMergeOutOfBounds
		}
	}
	return plan, nil
}

// Merge gives every square of the space of s the mean temperature and humidity of the space.
// Nothing changes when the mean temperature would leave any member's bounds.
func (s *Square) Merge() error {
	space := s.SquaresInSpace()
	plan, err := planMerge(space)
	if err != nil {
		return err
	}
	s.merging = true
	for _, m := range space {
		m.temperature, m.humidity = plan.temperature, plan.humidity
	}
	s.merging = false
	return nil
}

// IsMerged reports whether every square of the space has the temperature and humidity of s.
func (s *Square) IsMerged() bool {
	t := s.Temperature()
	for _, m := range s.SquaresInSpace() {
		if m.Temperature().Compare(t) != 0 || m.humidity != s.humidity {
			return false
		}
	}
	return true
}

func meanTemperature(values []float64) temperature.Temperature {
	factor := 1 / float64(len(values))
	var sum float64
	for _, v := range values {
		sum += v * factor
	}
	return temperature.C(sum)
}

// CanEnter reports whether an explorer can stand on s.
func (s *Square) CanEnter() bool { return s.kind != RockSquare }

// AccessibleNeighbours returns the enterable squares reachable in one step: across a
// non-isolating border or by teleportation.
func (s *Square) AccessibleNeighbours() []*Square {
	var out []*Square
	for _, n := range s.spaceNeighbours() {
		if n.CanEnter() {
			out = append(out, n)
		}
	}
	for _, t := range s.targets {
		if t.CanEnter() && !slices.Contains(out, t) {
			out = append(out, t)
		}
	}
	return out
}

// CanNavigateTo reports whether other can be reached from s through accessible neighbours.
func (s *Square) CanNavigateTo(other *Square) bool {
	if other == nil {
		return false
	}
	found, _ := walk(s, other, (*Square).AccessibleNeighbours)
	return found
}

// NavigableSquares returns every square reachable from s through accessible neighbours,
// including s itself.
func (s *Square) NavigableSquares() []*Square {
	_, visited := walk(s, nil, (*Square).AccessibleNeighbours)
	return visited
}

// Disconnect splits all six borders so that s no longer has neighbours.
func (s *Square) Disconnect() error {
	if s.disconnecting {
		return nil
	}
	s.disconnecting = true
	defer func() { s.disconnecting = false }()
	for _, d := range spatial.Directions {
		if err := s.borders[d].Split(); err != nil {
			return err
		}
	}
	return nil
}

// IsTeleporting reports whether s has teleportation targets.
func (s *Square) IsTeleporting() bool { return len(s.targets) > 0 }

// TeleportTargets returns a copy of the teleportation targets.
func (s *Square) TeleportTargets() []*Square {
	return slices.Clone(s.targets)
}

// HasTeleportTarget reports whether t is a teleportation target of s.
func (s *Square) HasTeleportTarget(t *Square) bool {
	return slices.Contains(s.targets, t)
}

// AddTeleportTarget adds a new target to a teleporting square.
func (s *Square) AddTeleportTarget(t *Square) error {
	if t == nil {
		return ErrNilSquare
	}
	if !s.IsTeleporting() || s.HasTeleportTarget(t) {
		return ErrInvalidTargets
	}
	s.targets = append(s.targets, t)
	return nil
}

// RemoveTeleportTarget removes a target. A teleporting square keeps at least one target.
func (s *Square) RemoveTeleportTarget(t *Square) error {
	i := slices.Index(s.targets, t)
	if i < 0 || len(s.targets) < 2 {
		return ErrInvalidTargets
	}
	s.targets = slices.Delete(s.targets, i, i+1)
	return nil
}

// NextTeleportTarget picks one of the targets at random.
func (s *Square) NextTeleportTarget(rng *rand.Rand) (*Square, bool) {
	if len(s.targets) == 0 {
		return nil, false
	}
	return s.targets[rng.Intn(len(s.targets))], true
}

// walk runs a depth first traversal from start along next. It stops as soon as target is
// reached and otherwise returns every visited square in discovery order.
func walk(start, target *Square, next func(*Square) []*Square) (bool, []*Square) {
	visited := mapset.New[*Square]()
	var order []*Square
	stack := []*Square{start}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if visited.Has(cur) {
			continue
		}
		if cur == target {
			return true, order
		}
		visited.Put(cur)
		order = append(order, cur)
		neighbours := next(cur)
		for i := len(neighbours) - 1; i >= 0; i-- {
			if !visited.Has(neighbours[i]) {
				stack = append(stack, neighbours[i])
			}
		}
	}
	return false, order
}
