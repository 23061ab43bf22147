package eth

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/holiman/uint256"

	"github.com/ethereum/go-ethereum/params"
)

var (
	OneEther        = Ether(1)
	OneTenthEther   = GWei(100_000_000)
	OneGWei         = GWei(1)
	ZeroWei         = WeiU64(0)
	FourTenthEther  = GWei(400_000_000)
	ThreeTenthEther = GWei(300_000_000)
)

var (
	weiPerGWei = uint256.NewInt(params.GWei)
	weiPerEth  = uint256.NewInt(params.Ether)
)

// ETH is a typed ETH (or 18-decimal native token) amount, expressed in number of wei.
// Methods take and return values, never mutating in place.
type ETH uint256.Int

// String prints the amount with thousands comma-separators and unit.
// Amounts that are a whole number of ether print in ether, whole gwei in gwei, anything else in wei.
func (e ETH) String() string {
	vWei := (*uint256.Int)(&e)
	if vWei.Sign() == 0 {
		return "0 wei"
	}
	var vGWei, remainder uint256.Int
	vGWei.DivMod(vWei, weiPerGWei, &remainder)
	if remainder.Sign() == 0 {
		var vEth uint256.Int
		vEth.DivMod(vWei, weiPerEth, &remainder)
		if remainder.Sign() == 0 {
			return vEth.PrettyDec(',') + " ether"
		}
		return vGWei.PrettyDec(',') + " gwei"
	}
	return vWei.PrettyDec(',') + " wei"
}

// EtherString returns the amount forced in ether units, without unit suffix or trailing zeroes.
func (e ETH) EtherString() string {
	var ethers, remainder uint256.Int
	ethers.DivMod((*uint256.Int)(&e), weiPerEth, &remainder)
	if remainder.Sign() == 0 {
		return ethers.Dec()
	}
	suffix := strings.TrimRight(fmt.Sprintf("%018d", &remainder), "0")
	return ethers.Dec() + "." + suffix
}

// Decimal returns the amount, in wei, in decimal form.
func (e ETH) Decimal() string {
	return (*uint256.Int)(&e).Dec()
}

// ToBig converts to *big.Int, in wei.
func (e ETH) ToBig() *big.Int {
	return (*uint256.Int)(&e).ToBig()
}

// Add panics on overflow.
func (e ETH) Add(v ETH) (out ETH) {
	if _, overflow := (*uint256.Int)(&out).AddOverflow((*uint256.Int)(&e), (*uint256.Int)(&v)); overflow {
		panic(fmt.Errorf("add overflow: %s + %s", e, v))
	}
	return
}

// SubUnderflow subtracts v, reporting whether the computation underflowed.
func (e ETH) SubUnderflow(v ETH) (out ETH, underflow bool) {
	_, underflow = (*uint256.Int)(&out).SubOverflow((*uint256.Int)(&e), (*uint256.Int)(&v))
	return
}

// Mul multiplies by a scalar and panics on overflow.
func (e ETH) Mul(scalar uint64) (out ETH) {
	if _, overflow := (*uint256.Int)(&out).MulOverflow((*uint256.Int)(&e), uint256.NewInt(scalar)); overflow {
		panic(fmt.Errorf("overflow on ETH mul: %s * %d", e, scalar))
	}
	return
}

func (e ETH) Lt(v ETH) bool {
	return (*uint256.Int)(&e).Lt((*uint256.Int)(&v))
}

func (e ETH) Gt(v ETH) bool {
	return (*uint256.Int)(&e).Gt((*uint256.Int)(&v))
}

func (e ETH) IsZero() bool {
	return (*uint256.Int)(&e).IsZero()
}

// UnmarshalText accepts a plain decimal or 0x-hex number of wei, or a decimal
// amount followed by a unit: "0.3 ether", "25 gwei", "100 wei".
func (e *ETH) UnmarshalText(data []byte) error {
	v, err := ParseAmount(string(data))
	if err != nil {
		return err
	}
	*e = v
	return nil
}

// MarshalText marshals in the unit form accepted by UnmarshalText.
func (e ETH) MarshalText() ([]byte, error) {
	return []byte(e.EtherString() + " ether"), nil
}

// ParseAmount parses an amount as accepted by UnmarshalText.
func ParseAmount(s string) (ETH, error) {
	s = strings.TrimSpace(s)
	fields := strings.Fields(s)
	switch len(fields) {
	case 1:
		var x uint256.Int
		if err := x.UnmarshalText([]byte(fields[0])); err != nil {
			return ETH{}, fmt.Errorf("invalid wei amount %q: %w", s, err)
		}
		return ETH(x), nil
	case 2:
		var decimals int
		switch strings.ToLower(fields[1]) {
		case "ether", "eth":
			decimals = 18
		case "gwei":
			decimals = 9
		case "wei":
			decimals = 0
		default:
			return ETH{}, fmt.Errorf("unknown unit in amount %q", s)
		}
		return parseDecimal(fields[0], decimals)
	default:
		return ETH{}, fmt.Errorf("invalid amount %q", s)
	}
}

// ParseEther parses a decimal amount of ether, e.g. "0.4".
func ParseEther(s string) (ETH, error) {
	return parseDecimal(strings.TrimSpace(s), 18)
}

// ParseUnits parses a decimal amount of a token with the given number of decimals.
func ParseUnits(s string, decimals int) (ETH, error) {
	return parseDecimal(strings.TrimSpace(s), decimals)
}

func parseDecimal(s string, decimals int) (ETH, error) {
	whole, frac, _ := strings.Cut(s, ".")
	if whole == "" {
		whole = "0"
	}
	if len(frac) > decimals {
		return ETH{}, fmt.Errorf("amount %q has more than %d decimals", s, decimals)
	}
	digits := whole + frac + strings.Repeat("0", decimals-len(frac))
	v, ok := new(big.Int).SetString(digits, 10)
	if !ok || v.Sign() < 0 {
		return ETH{}, fmt.Errorf("invalid decimal amount %q", s)
	}
	var out uint256.Int
	if overflow := out.SetFromBig(v); overflow {
		return ETH{}, fmt.Errorf("amount %q does not fit in uint256", s)
	}
	return ETH(out), nil
}

// WeiBig turns the given big.Int amount of wei into ETH-typed wei.
// This panics if the amount does not fit in 256 bits, or if it is negative.
func WeiBig(wei *big.Int) (out ETH) {
	if wei == nil {
		panic("nil *big.Int input to ETH constructor")
	}
	if wei.Sign() < 0 {
		panic("negative amounts are not supported")
	}
	if overflow := (*uint256.Int)(&out).SetFromBig(wei); overflow {
		panic("*big.Int input does not fit in uint256")
	}
	return
}

func WeiU64(wei uint64) (out ETH) {
	(*uint256.Int)(&out).SetUint64(wei)
	return
}

// GWei turns the given amount of gwei into ETH-typed wei.
func GWei(gwei uint64) ETH {
	var x uint256.Int
	x.SetUint64(gwei)
	x.Mul(&x, weiPerGWei)
	return ETH(x)
}

// Ether turns the given amount of ether into ETH-typed wei.
func Ether(ether uint64) ETH {
	var x uint256.Int
	x.SetUint64(ether)
	x.Mul(&x, weiPerEth)
	return ETH(x)
}
