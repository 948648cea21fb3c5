package board

import "fmt"

// Move encodes origin, destination, and kind in a uint16: bits 0-5 from,
// 6-11 to, 12-15 kind. Immutable value; the moving piece is recovered from
// the position's mailbox when the move is applied.
type Move uint16

// NoMove is the zero Move, used where no move applies (empty table slots,
// unset best move).
const NoMove Move = 0

// MoveKind tags the special effect of a move. Promotion kinds carry the
// promotion piece in their low two bits; bit 2 marks captures.
type MoveKind uint8

const (
	QuietMove MoveKind = iota
	DoublePush
	CastleKingside
	CastleQueenside
	CaptureMove
	EnPassant
	_
	_
	PromoKnight
	PromoBishop
	PromoRook
	PromoQueen
	PromoCaptureKnight
	PromoCaptureBishop
	PromoCaptureRook
	PromoCaptureQueen
)

// NewMove builds a move.
func NewMove(from, to Square, kind MoveKind) Move {
	return Move(uint16(from) | uint16(to)<<6 | uint16(kind)<<12)
}

// From returns the origin square.
func (m Move) From() Square { return Square(m & 63) }

// To returns the destination square.
func (m Move) To() Square { return Square(m >> 6 & 63) }

// Kind returns the move kind.
func (m Move) Kind() MoveKind { return MoveKind(m >> 12) }

// IsCapture reports whether the move captures (including en passant and
// capturing promotions).
func (m Move) IsCapture() bool { return m.Kind()&4 != 0 }

// IsPromotion reports whether the move promotes.
func (m Move) IsPromotion() bool { return m.Kind() >= PromoKnight }

// Promotion returns the promotion piece type, or NoPieceType for
// non-promotions.
func (m Move) Promotion() PieceType {
	if !m.IsPromotion() {
		return NoPieceType
	}
	return PieceType(m.Kind()&3) + Knight
}

// UCI returns the move in long algebraic form: four characters, or five
// with a promotion letter ("e2e4", "e7e8q").
func (m Move) UCI() string {
	s := m.From().String() + m.To().String()
	if m.IsPromotion() {
		s += string(promotionChars[m.Promotion()])
	}
	return s
}

func (m Move) String() string { return m.UCI() }

// ParseUCIMove resolves a long-algebraic move string against the position's
// legal moves. Errors on malformed input or a move that is not legal here.
func ParseUCIMove(p *Position, s string) (Move, error) {
	if len(s) < 4 || len(s) > 5 {
		return NoMove, fmt.Errorf("invalid move %q", s)
	}
	from, err := ParseSquare(s[0:2])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}
	to, err := ParseSquare(s[2:4])
	if err != nil {
		return NoMove, fmt.Errorf("invalid move %q: %w", s, err)
	}
	promo := NoPieceType
	if len(s) == 5 {
		switch s[4] {
		case 'n':
			promo = Knight
		case 'b':
			promo = Bishop
		case 'r':
			promo = Rook
		case 'q':
			promo = Queen
		default:
			return NoMove, fmt.Errorf("invalid promotion in move %q", s)
		}
	}

	var list MoveList
	p.LegalMoves(&list)
	for i := 0; i < list.Len; i++ {
		m := list.Moves[i]
		if m.From() == from && m.To() == to && m.Promotion() == promo {
			return m, nil
		}
	}
	return NoMove, fmt.Errorf("illegal move %q", s)
}
