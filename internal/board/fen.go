package board

import (
	"fmt"
	"strconv"
	"strings"
)

// StartFEN is the standard initial position.
const StartFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

// ParseFEN builds a Position from a six-field FEN string. Malformed or
// inconsistent input (bad placement, missing kings, pawns on back ranks,
// castling rights without the matching king/rook, impossible en-passant
// square) is rejected with a descriptive error; nothing invalid reaches the
// position invariants.
func ParseFEN(fen string) (*Position, error) {
	fields := strings.Fields(fen)
	if len(fields) != 6 {
		return nil, fmt.Errorf("invalid fen %q: expected 6 fields, got %d", fen, len(fields))
	}

	p := &Position{epSquare: NoSquare, hashedEPFile: -1}
	for i := range p.board {
		p.board[i] = NoPiece
	}

	ranks := strings.Split(fields[0], "/")
	if len(ranks) != 8 {
		return nil, fmt.Errorf("invalid fen placement %q: expected 8 ranks, got %d", fields[0], len(ranks))
	}
	for r, row := range ranks {
		rank := 7 - r
		file := 0
		lastDigit := false
		for i := 0; i < len(row); i++ {
			c := row[i]
			if c >= '1' && c <= '8' {
				if lastDigit {
					return nil, fmt.Errorf("invalid fen placement %q: adjacent empty counts in rank %d", fields[0], rank+1)
				}
				lastDigit = true
				file += int(c - '0')
				continue
			}
			lastDigit = false
			pc, err := ParsePieceFEN(c)
			if err != nil {
				return nil, fmt.Errorf("invalid fen placement %q: %w", fields[0], err)
			}
			if file > 7 {
				return nil, fmt.Errorf("invalid fen placement %q: rank %d overflows", fields[0], rank+1)
			}
			if pc.Type() == Pawn && (rank == 0 || rank == 7) {
				return nil, fmt.Errorf("invalid fen placement %q: pawn on rank %d", fields[0], rank+1)
			}
			sq := NewSquare(file, rank)
			bb := sq.Bitboard()
			p.byPiece[pc] |= bb
			p.byColor[pc.Color()] |= bb
			p.occupied |= bb
			p.board[sq] = pc
			file++
		}
		if file != 8 {
			return nil, fmt.Errorf("invalid fen placement %q: rank %d has %d files", fields[0], rank+1, file)
		}
	}
	if p.byPiece[WhiteKing].Count() != 1 || p.byPiece[BlackKing].Count() != 1 {
		return nil, fmt.Errorf("invalid fen placement %q: each side needs exactly one king", fields[0])
	}

	switch fields[1] {
	case "w":
		p.side = White
	case "b":
		p.side = Black
	default:
		return nil, fmt.Errorf("invalid fen side to move %q", fields[1])
	}

	if fields[2] != "-" {
		for i := 0; i < len(fields[2]); i++ {
			var right CastlingRights
			switch fields[2][i] {
			case 'K':
				right = WhiteKingside
			case 'Q':
				right = WhiteQueenside
			case 'k':
				right = BlackKingside
			case 'q':
				right = BlackQueenside
			default:
				return nil, fmt.Errorf("invalid fen castling rights %q", fields[2])
			}
			if p.castling.Has(right) {
				return nil, fmt.Errorf("invalid fen castling rights %q: duplicate flag", fields[2])
			}
			p.castling |= right
		}
		if err := p.validateCastling(); err != nil {
			return nil, fmt.Errorf("invalid fen castling rights %q: %w", fields[2], err)
		}
	}

	if fields[3] != "-" {
		sq, err := ParseSquare(fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid fen en-passant square %q", fields[3])
		}
		wantRank := 5 // after a black double push, white to move
		if p.side == Black {
			wantRank = 2
		}
		if sq.Rank() != wantRank {
			return nil, fmt.Errorf("invalid fen en-passant square %q for %s to move", fields[3], p.side)
		}
		// A real double push leaves the pushed pawn one rank past the
		// square, with the square itself and the origin behind it empty.
		pawnSq, origin, pusher := sq-8, sq+8, BlackPawn
		if p.side == Black {
			pawnSq, origin, pusher = sq+8, sq-8, WhitePawn
		}
		if p.board[pawnSq] != pusher || p.board[sq] != NoPiece || p.board[origin] != NoPiece {
			return nil, fmt.Errorf("invalid fen en-passant square %q without a double push", fields[3])
		}
		p.epSquare = sq
	}

	halfmove, err := strconv.ParseUint(fields[4], 10, 16)
	if err != nil {
		return nil, fmt.Errorf("invalid fen halfmove clock %q", fields[4])
	}
	p.halfmove = uint16(halfmove)

	fullmove, err := strconv.ParseUint(fields[5], 10, 16)
	if err != nil || fullmove == 0 {
		return nil, fmt.Errorf("invalid fen fullmove number %q", fields[5])
	}
	p.fullmove = uint16(fullmove)

	p.hashedEPFile = p.capturableEPFile()
	p.key = p.RecomputeKey()
	return p, nil
}

func (p *Position) validateCastling() error {
	type req struct {
		right      CastlingRights
		king, rook Square
		rookPiece  Piece
		kingPiece  Piece
	}
	for _, r := range []req{
		{WhiteKingside, SquareE1, SquareH1, WhiteRook, WhiteKing},
		{WhiteQueenside, SquareE1, SquareA1, WhiteRook, WhiteKing},
		{BlackKingside, SquareE8, SquareH8, BlackRook, BlackKing},
		{BlackQueenside, SquareE8, SquareA8, BlackRook, BlackKing},
	} {
		if !p.castling.Has(r.right) {
			continue
		}
		if p.board[r.king] != r.kingPiece || p.board[r.rook] != r.rookPiece {
			return fmt.Errorf("no castling pieces on %s/%s", r.king, r.rook)
		}
	}
	return nil
}

// FEN serializes the position; ParseFEN(p.FEN()) round-trips exactly.
func (p *Position) FEN() string {
	var sb strings.Builder
	for rank := 7; rank >= 0; rank-- {
		empty := 0
		for file := 0; file < 8; file++ {
			pc := p.board[NewSquare(file, rank)]
			if pc == NoPiece {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(pc.FENChar())
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
		if rank > 0 {
			sb.WriteByte('/')
		}
	}

	sb.WriteByte(' ')
	if p.side == White {
		sb.WriteByte('w')
	} else {
		sb.WriteByte('b')
	}
	sb.WriteByte(' ')
	sb.WriteString(p.castling.String())
	sb.WriteByte(' ')
	sb.WriteString(p.epSquare.String())
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(p.halfmove)))
	sb.WriteByte(' ')
	sb.WriteString(strconv.Itoa(int(p.fullmove)))
	return sb.String()
}

// StartPosition returns the standard initial position.
func StartPosition() *Position {
	p, err := ParseFEN(StartFEN)
	if err != nil {
		panic("board: start position fen failed to parse: " + err.Error())
	}
	return p
}
