package codegen

// writePreamble emits the free-standing helper functions the generated
// source relies on: the source-block waveforms that don't reduce to a
// single libm call (model_triangle_wave, model_pseudo_noise) and the
// lookup-table interpolators (model_interp1d, model_bilerp), ported
// statement-for-statement from internal/blocks/source.go's pseudoNoise
// and internal/blocks/lookup.go's interp1D/bilerp/locate so a generated
// model reproduces the interpreter's trace exactly (P8).
func writePreamble(w *Writer) {
	w.Line("static double model_triangle_wave(double t, double period, double amplitude) {")
	w.Indent()
	w.Line("double phase = fmod(t, period) / period;")
	w.Line("if (phase < 0) phase += 1.0;")
	w.Line("if (phase < 0.5) return amplitude * (4.0 * phase - 1.0);")
	w.Line("return amplitude * (3.0 - 4.0 * phase);")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Line("static double model_pseudo_noise(double t) {")
	w.Indent()
	w.Line("unsigned long long bits;")
	w.Line("memcpy(&bits, &t, sizeof(bits));")
	w.Line("bits ^= bits >> 33;")
	w.Line("bits *= 0xff51afd7ed558ccdULL;")
	w.Line("bits ^= bits >> 33;")
	w.Line("bits *= 0xc4ceb9fe1a85ec53ULL;")
	w.Line("bits ^= bits >> 33;")
	w.Line("return (double)(bits %% 1000000ULL) / 500000.0 - 1.0;")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Line("static double model_interp1d(const double *xs, const double *ys, int n, double x, int extrapolate) {")
	w.Indent()
	w.Line("int i;")
	w.Line("if (x <= xs[0]) {")
	w.Indent()
	w.Line("if (extrapolate) return ys[0] + (ys[1] - ys[0]) / (xs[1] - xs[0]) * (x - xs[0]);")
	w.Line("return ys[0];")
	w.Dedent()
	w.Line("}")
	w.Line("if (x >= xs[n - 1]) {")
	w.Indent()
	w.Line("if (extrapolate) return ys[n - 1] + (ys[n - 1] - ys[n - 2]) / (xs[n - 1] - xs[n - 2]) * (x - xs[n - 1]);")
	w.Line("return ys[n - 1];")
	w.Dedent()
	w.Line("}")
	w.Line("for (i = 0; i < n - 1; i++) {")
	w.Indent()
	w.Line("if (x <= xs[i + 1]) {")
	w.Indent()
	w.Line("double t = (x - xs[i]) / (xs[i + 1] - xs[i]);")
	w.Line("return ys[i] + t * (ys[i + 1] - ys[i]);")
	w.Dedent()
	w.Line("}")
	w.Dedent()
	w.Line("}")
	w.Line("return ys[n - 1];")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Line("static void model_locate(const double *xs, int n, double v, int extrapolate, int *lo, int *hi, double *t) {")
	w.Indent()
	w.Line("int i;")
	w.Line("if (v <= xs[0]) {")
	w.Indent()
	w.Line("if (extrapolate && n > 1) { *lo = 0; *hi = 1; *t = (v - xs[0]) / (xs[1] - xs[0]); return; }")
	w.Line("*lo = 0; *hi = 0; *t = 0.0; return;")
	w.Dedent()
	w.Line("}")
	w.Line("if (v >= xs[n - 1]) {")
	w.Indent()
	w.Line("if (extrapolate && n > 1) { *lo = n - 2; *hi = n - 1; *t = 1.0 + (v - xs[n - 1]) / (xs[n - 1] - xs[n - 2]); return; }")
	w.Line("*lo = n - 1; *hi = n - 1; *t = 0.0; return;")
	w.Dedent()
	w.Line("}")
	w.Line("for (i = 0; i < n - 1; i++) {")
	w.Indent()
	w.Line("if (v <= xs[i + 1]) { *lo = i; *hi = i + 1; *t = (v - xs[i]) / (xs[i + 1] - xs[i]); return; }")
	w.Dedent()
	w.Line("}")
	w.Line("*lo = n - 1; *hi = n - 1; *t = 0.0;")
	w.Dedent()
	w.Line("}")
	w.Blank()

	w.Line("static double model_bilerp(const double *xs, int nx, const double *ys, int ny, const double *table, double x, double y, int extrapolate) {")
	w.Indent()
	w.Line("int xlo, xhi, ylo, yhi;")
	w.Line("double xt, yt, v00, v01, v10, v11, v0, v1;")
	w.Line("model_locate(xs, nx, x, extrapolate, &xlo, &xhi, &xt);")
	w.Line("model_locate(ys, ny, y, extrapolate, &ylo, &yhi, &yt);")
	w.Line("v00 = table[ylo * nx + xlo];")
	w.Line("v01 = table[ylo * nx + xhi];")
	w.Line("v10 = table[yhi * nx + xlo];")
	w.Line("v11 = table[yhi * nx + xhi];")
	w.Line("v0 = v00 + xt * (v01 - v00);")
	w.Line("v1 = v10 + xt * (v11 - v10);")
	w.Line("return v0 + yt * (v1 - v0);")
	w.Dedent()
	w.Line("}")
	w.Blank()
}
