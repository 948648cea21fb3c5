package board

// MakeMove applies m, assumed to come from this position's legal move list,
// and pushes an undo record. The zobrist key is maintained incrementally;
// UnmakeMove restores it exactly from the record.
func (p *Position) MakeMove(m Move) {
	u := &p.undo[p.undoLen]
	p.undoLen++
	u.move = m
	u.captured = NoPiece
	u.castling = p.castling
	u.epSquare = p.epSquare
	u.halfmove = p.halfmove
	u.key = p.key
	u.hashedEPFile = p.hashedEPFile

	if p.hashedEPFile >= 0 {
		p.key ^= epFileKeys[p.hashedEPFile]
		p.hashedEPFile = -1
	}

	us := p.side
	from, to, kind := m.From(), m.To(), m.Kind()
	mover := p.board[from]
	p.halfmove++
	p.epSquare = NoSquare

	switch kind {
	case QuietMove:
		p.movePiece(mover, from, to)
		if mover.Type() == Pawn {
			p.halfmove = 0
		}
	case DoublePush:
		p.movePiece(mover, from, to)
		p.halfmove = 0
		if us == White {
			p.epSquare = from + 8
		} else {
			p.epSquare = from - 8
		}
	case CastleKingside:
		p.movePiece(mover, from, to)
		p.movePiece(NewPiece(us, Rook), to+1, to-1) // h-file rook to f-file
	case CastleQueenside:
		p.movePiece(mover, from, to)
		p.movePiece(NewPiece(us, Rook), to-2, to+1) // a-file rook to d-file
	case CaptureMove:
		u.captured = p.board[to]
		p.removePiece(u.captured, to)
		p.movePiece(mover, from, to)
		p.halfmove = 0
	case EnPassant:
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		u.captured = p.board[capSq]
		p.removePiece(u.captured, capSq)
		p.movePiece(mover, from, to)
		p.halfmove = 0
	default: // promotions
		if m.IsCapture() {
			u.captured = p.board[to]
			p.removePiece(u.captured, to)
		}
		p.removePiece(mover, from)
		p.addPiece(NewPiece(us, m.Promotion()), to)
		p.halfmove = 0
	}

	if cleared := castlingRightsClear[from] | castlingRightsClear[to]; p.castling&cleared != 0 {
		p.key ^= castleKeys[p.castling]
		p.castling &^= cleared
		p.key ^= castleKeys[p.castling]
	}

	if us == Black {
		p.fullmove++
	}
	p.side = us.Other()
	p.key ^= sideKey

	if f := p.capturableEPFile(); f >= 0 {
		p.key ^= epFileKeys[f]
		p.hashedEPFile = f
	}
}

// UnmakeMove reverses the most recent MakeMove.
func (p *Position) UnmakeMove() {
	p.undoLen--
	u := &p.undo[p.undoLen]
	m := u.move

	p.side = p.side.Other()
	us := p.side
	if us == Black {
		p.fullmove--
	}

	from, to, kind := m.From(), m.To(), m.Kind()
	switch kind {
	case QuietMove, DoublePush:
		p.movePiece(p.board[to], to, from)
	case CastleKingside:
		p.movePiece(p.board[to], to, from)
		p.movePiece(NewPiece(us, Rook), to-1, to+1)
	case CastleQueenside:
		p.movePiece(p.board[to], to, from)
		p.movePiece(NewPiece(us, Rook), to+1, to-2)
	case CaptureMove:
		p.movePiece(p.board[to], to, from)
		p.addPiece(u.captured, to)
	case EnPassant:
		p.movePiece(p.board[to], to, from)
		capSq := to - 8
		if us == Black {
			capSq = to + 8
		}
		p.addPiece(u.captured, capSq)
	default: // promotions
		p.removePiece(p.board[to], to)
		p.addPiece(NewPiece(us, Pawn), from)
		if u.captured != NoPiece {
			p.addPiece(u.captured, to)
		}
	}

	p.castling = u.castling
	p.epSquare = u.epSquare
	p.halfmove = u.halfmove
	p.key = u.key
	p.hashedEPFile = u.hashedEPFile
}

// MakeNullMove passes the turn: side flips, the en-passant right lapses,
// everything else stays. Used by null-move pruning; never legal chess.
func (p *Position) MakeNullMove() {
	u := &p.undo[p.undoLen]
	p.undoLen++
	u.move = NoMove
	u.captured = NoPiece
	u.castling = p.castling
	u.epSquare = p.epSquare
	u.halfmove = p.halfmove
	u.key = p.key
	u.hashedEPFile = p.hashedEPFile

	if p.hashedEPFile >= 0 {
		p.key ^= epFileKeys[p.hashedEPFile]
		p.hashedEPFile = -1
	}
	p.epSquare = NoSquare
	p.side = p.side.Other()
	p.key ^= sideKey
}

// UnmakeNullMove reverses the most recent MakeNullMove.
func (p *Position) UnmakeNullMove() {
	p.undoLen--
	u := &p.undo[p.undoLen]
	p.side = p.side.Other()
	p.castling = u.castling
	p.epSquare = u.epSquare
	p.halfmove = u.halfmove
	p.key = u.key
	p.hashedEPFile = u.hashedEPFile
}
